package remote

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/obsidianstack/creditmeter/pkg/types"
)

// wireMessage mirrors one element of the "messages" array. Pointer fields
// let validate tell a missing key from a zero value.
type wireMessage struct {
	ID        *int64  `json:"id"`
	Text      *string `json:"text"`
	Timestamp *string `json:"timestamp"`
	ReportID  *int64  `json:"report_id"`
}

func (w wireMessage) validate() error {
	var errs []error
	if w.ID == nil {
		errs = append(errs, errors.New("id is required"))
	}
	if w.Text == nil {
		errs = append(errs, errors.New("text is required"))
	}
	if w.Timestamp == nil {
		errs = append(errs, errors.New("timestamp is required"))
	}
	return errors.Join(errs...)
}

func (w wireMessage) toMessage() types.Message {
	return types.Message{
		ID:        *w.ID,
		Text:      *w.Text,
		Timestamp: *w.Timestamp,
		ReportID:  w.ReportID,
	}
}

type wireReport struct {
	ID         *int64  `json:"id"`
	Name       *string `json:"name"`
	CreditCost *int64  `json:"credit_cost"`
}

func (w wireReport) validate() error {
	var errs []error
	if w.ID == nil {
		errs = append(errs, errors.New("id is required"))
	}
	if w.Name == nil {
		errs = append(errs, errors.New("name is required"))
	}
	if w.CreditCost == nil {
		errs = append(errs, errors.New("credit_cost is required"))
	}
	return errors.Join(errs...)
}

func (w wireReport) toReport() types.Report {
	return types.Report{ID: *w.ID, Name: *w.Name, CreditCost: *w.CreditCost}
}

// errMissingMessages is returned when the batch object has no "messages" key.
var errMissingMessages = errors.New(`response has no "messages" key`)

// decodeMessages validates every element of the batch. Any invalid element
// rejects the whole batch; the returned error lists every failure.
func decodeMessages(body []byte) ([]types.Message, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	raw, ok := envelope["messages"]
	if !ok {
		return nil, errMissingMessages
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &ValidationError{Errs: []error{fmt.Errorf("messages: %w", err)}}
	}

	msgs := make([]types.Message, 0, len(elems))
	var errs []error
	for i, e := range elems {
		var w wireMessage
		if err := json.Unmarshal(e, &w); err != nil {
			errs = append(errs, fmt.Errorf("messages[%d]: %w", i, err))
			continue
		}
		if err := w.validate(); err != nil {
			errs = append(errs, fmt.Errorf("messages[%d]: %w", i, err))
			continue
		}
		msgs = append(msgs, w.toMessage())
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errs: errs}
	}
	return msgs, nil
}

func decodeReport(body []byte) (types.Report, error) {
	var w wireReport
	if err := json.Unmarshal(body, &w); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return types.Report{}, fmt.Errorf("decode report: %w", err)
		}
		return types.Report{}, &ValidationError{Errs: []error{err}}
	}
	if err := w.validate(); err != nil {
		return types.Report{}, &ValidationError{Errs: []error{err}}
	}
	return w.toReport(), nil
}

// ValidationError reports a payload that parsed as JSON but does not match
// the expected schema.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + errors.Join(e.Errs...).Error()
}

func (e *ValidationError) Unwrap() []error { return e.Errs }
