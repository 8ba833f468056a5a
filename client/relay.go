package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Relay is a Backend that forwards value operations over a websocket to a
// sheet relay, for sheets that are only reachable through a bridge
// (e.g. a script bound to the spreadsheet). One request is in flight at a
// time; each request frame is answered by exactly one response frame.
type Relay struct {
	SpreadsheetID string

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int64
	log    *slog.Logger
}

var _ Backend = (*Relay)(nil)

// DialRelay connects to the relay at url. token, if set, is sent as a
// bearer token in the handshake.
func DialRelay(ctx context.Context, url, spreadsheetID, token string) (*Relay, error) {
	header := http.Header{}
	header.Set("User-Agent", defaultUserAgent)
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, &BackendError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("relay handshake rejected: %v", err)}
		}
		return nil, fmt.Errorf("connecting to relay: %w", err)
	}
	return &Relay{
		SpreadsheetID: spreadsheetID,
		conn:          conn,
		log:           slog.New(slog.DiscardHandler),
	}, nil
}

// WithLogger sets the logger used to trace frames.
func (r *Relay) WithLogger(log *slog.Logger) *Relay {
	if log != nil {
		r.log = log
	}
	return r
}

// Close closes the connection with a normal closure.
func (r *Relay) Close() error {
	return r.conn.Close(websocket.StatusNormalClosure, "")
}

func (r *Relay) roundTrip(ctx context.Context, op string, rngs []string, values [][][]any) (*relayResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	req := relayRequest{ID: r.nextID, Op: op, SpreadsheetID: r.SpreadsheetID, Ranges: rngs, Values: values}
	if err := wsjson.Write(ctx, r.conn, req); err != nil {
		return nil, fmt.Errorf("sending %s request: %w", op, err)
	}

	_, data, err := r.conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", op, err)
	}
	r.log.Debug("relay frame", "op", op, "id", req.ID, "ranges", rngs, "bytes", len(data))

	var resp relayResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", op, err)
	}
	if resp.ID != req.ID {
		return nil, fmt.Errorf("relay answered request %d, expected %d", resp.ID, req.ID)
	}
	if !resp.Ok {
		e := &BackendError{StatusCode: resp.Status, Raw: data}
		if resp.Error != nil {
			e.Code = resp.Error.Code
			e.Message = resp.Error.Message
		}
		return nil, e
	}
	return &resp, nil
}

// Get reads the values of one range.
func (r *Relay) Get(ctx context.Context, rng string) ([][]any, error) {
	out, err := r.BatchGet(ctx, []string{rng})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// BatchGet reads several ranges in one frame.
func (r *Relay) BatchGet(ctx context.Context, rngs []string) ([][][]any, error) {
	rngs, err := canonicalRanges(rngs)
	if err != nil {
		return nil, err
	}
	op := "batchGet"
	if len(rngs) == 1 {
		op = "get"
	}
	resp, err := r.roundTrip(ctx, op, rngs, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Values) != len(rngs) {
		return nil, fmt.Errorf("relay returned %d ranges, requested %d", len(resp.Values), len(rngs))
	}
	for i := range resp.Values {
		resp.Values[i] = nonNil(resp.Values[i])
	}
	return resp.Values, nil
}

// Update writes rows into a range.
func (r *Relay) Update(ctx context.Context, rng string, rows [][]any) error {
	rng, err := canonicalRange(rng)
	if err != nil {
		return err
	}
	_, err = r.roundTrip(ctx, "update", []string{rng}, [][][]any{nonNil(rows)})
	return err
}

// BatchUpdate writes one set of rows per range in one frame.
func (r *Relay) BatchUpdate(ctx context.Context, rngs []string, rows [][][]any) error {
	if err := checkBatch(rngs, rows); err != nil {
		return err
	}
	rngs, err := canonicalRanges(rngs)
	if err != nil {
		return err
	}
	_, err = r.roundTrip(ctx, "batchUpdate", rngs, rows)
	return err
}

// Clear removes the values of a range.
func (r *Relay) Clear(ctx context.Context, rng string) error {
	rng, err := canonicalRange(rng)
	if err != nil {
		return err
	}
	_, err = r.roundTrip(ctx, "clear", []string{rng}, nil)
	return err
}

// BatchClear clears several ranges in one frame.
func (r *Relay) BatchClear(ctx context.Context, rngs []string) error {
	rngs, err := canonicalRanges(rngs)
	if err != nil {
		return err
	}
	_, err = r.roundTrip(ctx, "batchClear", rngs, nil)
	return err
}
