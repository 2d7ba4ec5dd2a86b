package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielcaballero88/binance-trader/pkg/protocol"
)

// ServerTime calls Time and converts the serverTime field to a time.Time.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	res, err := c.Time(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return ParseServerTime(res)
}

// ParseServerTime extracts serverTime (epoch milliseconds) from a Time result.
func ParseServerTime(res protocol.Result) (time.Time, error) {
	obj, ok := res.(map[string]any)
	if !ok {
		return time.Time{}, fmt.Errorf("unexpected time payload %T", res)
	}

	var ms int64
	switch v := obj["serverTime"].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("parse serverTime %q: %w", v, err)
		}
		ms = n
	case float64:
		ms = int64(v)
	case nil:
		return time.Time{}, fmt.Errorf("time payload has no serverTime field")
	default:
		return time.Time{}, fmt.Errorf("unexpected serverTime type %T", v)
	}

	return time.UnixMilli(ms).UTC(), nil
}
