package auth

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// call is one slot of a batched request, keyed by its index in the batch.
type call struct {
	JSON any       `json:"json"`
	Meta *callMeta `json:"meta,omitempty"`
}

type callMeta struct {
	Values []string `json:"values"`
}

// noInput is how the dashboard expects a procedure without arguments to be
// encoded: a null value tagged as undefined.
var noInput = call{JSON: nil, Meta: &callMeta{Values: []string{"undefined"}}}

func withInput(v any) call {
	return call{JSON: v}
}

func encodeBatch(calls ...call) map[string]call {
	batch := make(map[string]call, len(calls))
	for i, c := range calls {
		batch[strconv.Itoa(i)] = c
	}
	return batch
}

func batchQuery() url.Values {
	return url.Values{"batch": {"1"}}
}

func batchInputQuery(calls ...call) (url.Values, error) {
	input, err := json.Marshal(encodeBatch(calls...))
	if err != nil {
		return nil, err
	}
	q := batchQuery()
	q.Set("input", string(input))
	return q, nil
}

// entry is one element of a batched response.
type entry struct {
	Result *struct {
		Data struct {
			JSON json.RawMessage `json:"json"`
		} `json:"data"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

func (e entry) data() json.RawMessage {
	if e.Result == nil {
		return nil
	}
	return e.Result.Data.JSON
}

type rpcError struct {
	JSON struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
		Data    struct {
			Code       string `json:"code"`
			HTTPStatus int    `json:"httpStatus"`
			Path       string `json:"path"`
		} `json:"data"`
	} `json:"json"`
}

func (e *rpcError) message() string {
	if e.JSON.Data.Code != "" && e.JSON.Message != "" {
		return e.JSON.Data.Code + ": " + e.JSON.Message
	}
	if e.JSON.Message != "" {
		return e.JSON.Message
	}
	return e.JSON.Data.Code
}

// decodeBatch parses a batched response body. It fails if the body is not a
// JSON array.
func decodeBatch(body []byte) ([]entry, error) {
	var entries []entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// errorMessage returns the first RPC error message found in body, or "" when
// body is not a batched response or carries no error.
func errorMessage(body []byte) string {
	entries, err := decodeBatch(body)
	if err != nil {
		var single entry
		if json.Unmarshal(body, &single) != nil || single.Error == nil {
			return ""
		}
		return single.Error.message()
	}
	for _, e := range entries {
		if e.Error != nil {
			return e.Error.message()
		}
	}
	return ""
}
