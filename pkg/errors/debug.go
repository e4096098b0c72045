package errors

import (
	stdErrors "errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrorDump is the log-friendly view of an error chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Status     int      `json:"status,omitempty"`
	Chain      []string `json:"chain,omitempty"`
	// Causes holds one entry per error combined with multierr.
	Causes     []string `json:"causes,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		d.Code, d.Status = typed.Code(), typed.Status()
	}

	if parts := multierr.Errors(err); len(parts) > 1 {
		for _, part := range parts {
			d.Causes = append(d.Causes, part.Error())
		}
		return d
	}
	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

// Fields flattens a dump into logger fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	if len(d.Chain) > 0 {
		fields["error_chain"] = d.Chain
	}
	if len(d.Causes) > 0 {
		fields["error_causes"] = d.Causes
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if d.Status != 0 {
		fields["http_status"] = d.Status
	}
	return fields
}
