package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/foxseedlab/tsuyaku/internal/translation"
)

const maxResponseBytes = 1 << 20

// GTXBackend calls the public translate_a/single endpoint with client=gtx.
type GTXBackend struct {
	endpoint string
	client   *http.Client
}

func NewGTXBackend(endpoint string, client *http.Client) *GTXBackend {
	if client == nil {
		client = &http.Client{}
	}
	return &GTXBackend{endpoint: endpoint, client: client}
}

func (b *GTXBackend) Translate(ctx context.Context, text, source, target string) ([]string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, &translation.StatusError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	return parseFragments(body)
}

// parseFragments reads the first element of the response, a list of
// [translated, original, ...] segments.
func parseFragments(body []byte) ([]string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, &translation.DecodeError{Err: err}
	}
	if len(root) == 0 || string(root[0]) == "null" {
		return nil, nil
	}
	var segments [][]json.RawMessage
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return nil, &translation.DecodeError{Err: err}
	}
	fragments := make([]string, 0, len(segments))
	for i, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var s *string
		if err := json.Unmarshal(seg[0], &s); err != nil {
			return nil, &translation.DecodeError{Err: fmt.Errorf("segment %d: %w", i, err)}
		}
		if s != nil {
			fragments = append(fragments, *s)
		}
	}
	return fragments, nil
}
