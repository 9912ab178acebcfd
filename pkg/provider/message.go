// Package provider implements the external layout provider protocol.
//
// A provider is a websocket peer that serves datasets and network layouts.
// Every frame is a JSON [Message] with an action and a content payload:
//
//	-> {"action": "provide records", "content": {"name": "mtcars.csv"}}
//	<- {"action": "provide records", "content": [{"mpg": 21, ...}, ...]}
//	-> {"action": "provide layout", "content": {"nodeIndices": [0, 1], "links": [[0, 1]]}}
//	<- {"action": "provide layout", "content": [[0.1, -0.3], [0.5, 0.9]]}
//
// Failures are reported with the "error" action. [Client] talks to any
// provider; [Server] is a provider backed by a [data.Source] and a
// [layout.Engine].
//
// For compatibility with older providers, actions may also arrive as the
// integers 0 (records) and 1 (layout), records content may be a JSON string
// holding the array, and layout requests may name their node list "nodes".
package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
)

// Action names a request kind.
type Action string

const (
	ActionRecords Action = "provide records"
	ActionLayout  Action = "provide layout"
	ActionError   Action = "error"
)

// UnmarshalJSON accepts both the string form and the legacy integer form.
func (a *Action) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Action(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("action: %w", err)
	}
	switch n {
	case 0:
		*a = ActionRecords
	case 1:
		*a = ActionLayout
	default:
		return fmt.Errorf("action: unknown code %d", n)
	}
	return nil
}

// Message is one websocket frame.
type Message struct {
	Action  Action          `json:"action"`
	Content json.RawMessage `json:"content,omitempty"`
}

// RecordsRequest asks for a named dataset.
type RecordsRequest struct {
	Name string `json:"name"`
}

// LayoutRequest asks for positions of NodeIndices given Links.
type LayoutRequest struct {
	NodeIndices []int       `json:"nodeIndices"`
	Links       []data.Link `json:"links"`
}

func (r *LayoutRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		NodeIndices []int       `json:"nodeIndices"`
		Nodes       []int       `json:"nodes"`
		Links       []data.Link `json:"links"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.NodeIndices = raw.NodeIndices
	if r.NodeIndices == nil {
		r.NodeIndices = raw.Nodes
	}
	r.Links = raw.Links
	return nil
}

// ErrorContent describes a failed request.
type ErrorContent struct {
	Action  Action `json:"action"`
	Message string `json:"message"`
}

func newMessage(action Action, content any) (Message, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s: %w", action, err)
	}
	return Message{Action: action, Content: raw}, nil
}

// DecodeRecords parses records content. It accepts a JSON array of objects or
// a JSON string containing that array.
func DecodeRecords(content json.RawMessage) ([]data.Record, error) {
	content = bytes.TrimSpace(content)
	if len(content) > 0 && content[0] == '"' {
		var inner string
		if err := json.Unmarshal(content, &inner); err != nil {
			return nil, errors.Wrap(errors.ErrCodeProviderMalformed, err, "records content")
		}
		content = json.RawMessage(inner)
	}
	records, err := data.ReadJSON(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderMalformed, err, "records content")
	}
	return records, nil
}

// DecodePositions parses layout content and checks it holds n finite [x, y]
// pairs.
func DecodePositions(content json.RawMessage, n int) ([]geom.Point, error) {
	var pairs [][]float64
	if err := json.Unmarshal(content, &pairs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderMalformed, err, "layout content")
	}
	if len(pairs) != n {
		return nil, errors.New(errors.ErrCodeProviderMalformed, "layout has %d positions for %d nodes", len(pairs), n)
	}
	pts := make([]geom.Point, n)
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, errors.New(errors.ErrCodeProviderMalformed, "position %d has %d coordinates", i, len(p))
		}
		if math.IsNaN(p[0]) || math.IsInf(p[0], 0) || math.IsNaN(p[1]) || math.IsInf(p[1], 0) {
			return nil, errors.New(errors.ErrCodeProviderMalformed, "position %d is not finite", i)
		}
		pts[i] = geom.Pt(p[0], p[1])
	}
	return pts, nil
}

// EncodePositions writes pts as [[x, y], ...].
func EncodePositions(pts []geom.Point) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}
