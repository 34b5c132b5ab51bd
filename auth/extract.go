package auth

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Credentials are the account fields read from the dashboard. An empty field
// means the response did not carry it.
type Credentials struct {
	AccountID     string
	TestSecretKey string
}

func (c Credentials) Complete() bool {
	return c.AccountID != "" && c.TestSecretKey != ""
}

// Missing names the fields that were not found.
func (c Credentials) Missing() []string {
	var missing []string
	if c.AccountID == "" {
		missing = append(missing, "accountId")
	}
	if c.TestSecretKey == "" {
		missing = append(missing, "testSecretKey")
	}
	return missing
}

type apiKey struct {
	KeyType  string `json:"key_type"`
	LiveMode *bool  `json:"live_mode"`
	Key      string `json:"key"`
}

func (k apiKey) isTestSecret() bool {
	return k.KeyType == "secret" && k.LiveMode != nil && !*k.LiveMode
}

// Extract reads the account ID and the first non-live secret key from the
// user.current,keys.list response. Missing fields are left empty; only a
// response that is not an array of at least two entries is an error.
func Extract(raw []byte) (Credentials, error) {
	return extract(raw, zerolog.Nop())
}

// extract is Extract with a logger for payloads that are present but do not
// decode.
func extract(raw []byte, log zerolog.Logger) (Credentials, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Credentials{}, NewError(ErrExtract, ErrInvalidResponseFormat, 0, string(raw), "response is not an array", err)
	}
	if len(entries) < 2 {
		return Credentials{}, NewError(ErrExtract, ErrInvalidResponseFormat, 0, string(raw),
			fmt.Sprintf("expected 2 entries, got %d", len(entries)), nil)
	}

	var creds Credentials

	if data := entryData(entries[0]); data != nil {
		var user struct {
			DefaultAccountID string `json:"default_account_id"`
		}
		if err := json.Unmarshal(data, &user); err != nil {
			log.Debug().Err(err).RawJSON("user", data).Msg("user payload not decoded, account id treated as absent")
		} else {
			creds.AccountID = user.DefaultAccountID
		}
	}

	if data := entryData(entries[1]); data != nil {
		var keys []json.RawMessage
		if err := json.Unmarshal(data, &keys); err != nil {
			log.Debug().Err(err).Msg("keys payload is not a list")
		}
		for i, item := range keys {
			// A key that does not decode cleanly is never selected.
			var k apiKey
			if err := json.Unmarshal(item, &k); err != nil {
				log.Debug().Err(err).Int("index", i).Msg("skipping undecodable key entry")
				continue
			}
			if k.isTestSecret() {
				creds.TestSecretKey = k.Key
				break
			}
		}
	}

	return creds, nil
}

func entryData(raw json.RawMessage) json.RawMessage {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil
	}
	data := e.data()
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return data
}
