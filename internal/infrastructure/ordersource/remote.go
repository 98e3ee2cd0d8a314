package ordersource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tsiory/pos-print-relay/internal/domain/entity"
	"github.com/tsiory/pos-print-relay/internal/domain/repository"
	"github.com/tsiory/pos-print-relay/pkg/apperror"
)

const defaultFetchTimeout = 10 * time.Second

// remoteSource fetches order snapshots as JSON from the business backend.
// One attempt per request, bounded by the timeout; failures surface as
// typed errors and are never silently retried.
type remoteSource struct {
	baseURL string
	client  *http.Client
}

// NewRemote creates an OrderSource backed by the backend at baseURL.
func NewRemote(baseURL string) repository.OrderSource {
	return &remoteSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultFetchTimeout},
	}
}

func (s *remoteSource) GetByName(ctx context.Context, name string) (*entity.OrderSnapshot, error) {
	u := fmt.Sprintf("%s/api/pos/orders/%s", s.baseURL, url.PathEscape(name))
	return s.fetch(ctx, u, "Order "+name)
}

func (s *remoteSource) GetLast(ctx context.Context, registerID, userID int) (*entity.OrderSnapshot, error) {
	q := url.Values{}
	if registerID > 0 {
		q.Set("register_id", strconv.Itoa(registerID))
	}
	if userID > 0 {
		q.Set("user_id", strconv.Itoa(userID))
	}
	u := s.baseURL + "/api/pos/orders/last"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return s.fetch(ctx, u, "Last order")
}

func (s *remoteSource) fetch(ctx context.Context, u, resource string) (*entity.OrderSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperror.NewUpstreamError("invalid order source request: " + err.Error())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperror.NewUpstreamError("order source unreachable: " + err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperror.NewNotFoundError(resource)
	case resp.StatusCode != http.StatusOK:
		return nil, apperror.NewUpstreamError(fmt.Sprintf("order source returned status %d", resp.StatusCode))
	}

	var snapshot entity.OrderSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, apperror.NewUpstreamError("order source sent an undecodable snapshot: " + err.Error())
	}
	return &snapshot, nil
}
