package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

type State int

const (
	StateInit State = iota
	StateOtpRequested
	StateAwaitingCode
	StateVerified
	StateDataFetched
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateOtpRequested:
		return "otp_requested"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateVerified:
		return "verified"
	case StateDataFetched:
		return "data_fetched"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var ErrAlreadyRun = errors.New("authenticator has already run")

// Result is the outcome of a run. Raw is the protected response body, kept so
// an incomplete extraction can be diagnosed.
type Result struct {
	Credentials Credentials
	Raw         []byte
}

// Authenticator logs into the dashboard with an emailed passcode and reads
// the account credentials. Each Authenticator runs once.
type Authenticator struct {
	EmailAddress string
	Session      *Session

	requester *OtpRequester
	verifier  *OtpVerifier
	fetcher   *DataFetcher
	codes     CodeSource
	log       zerolog.Logger

	state  State
	result *Result
}

func NewAuthenticator(emailAddress string, cfg Config, codes CodeSource, logger zerolog.Logger) (*Authenticator, error) {
	session, err := NewSession(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Authenticator{
		EmailAddress: emailAddress,
		Session:      session,
		requester:    NewOtpRequester(session),
		verifier:     NewOtpVerifier(session),
		fetcher:      NewDataFetcher(session),
		codes:        codes,
		log:          logger,
	}, nil
}

func (a *Authenticator) State() State {
	return a.state
}

// GetAuthResult returns the result of the last run, or nil before Run.
func (a *Authenticator) GetAuthResult() *Result {
	return a.result
}

// Run performs the whole login. Any step failure aborts the run. When the
// response lacks the account ID or the test key, Run returns the partial
// result together with an error matching ErrExtractionIncomplete.
func (a *Authenticator) Run(ctx context.Context) (*Result, error) {
	if a.state != StateInit {
		return nil, ErrAlreadyRun
	}

	a.log.Info().Str("email", a.EmailAddress).Msg("requesting one-time password")
	challenge, err := a.requester.Request(ctx, a.EmailAddress)
	if err != nil {
		return nil, a.fail(err)
	}
	a.state = StateOtpRequested
	a.log.Info().Str("method_id", challenge.MethodID).Msg("one-time password sent")

	a.state = StateAwaitingCode
	code, err := readCode(ctx, a.codes)
	if err != nil {
		return nil, a.fail(err)
	}

	a.log.Info().Msg("verifying one-time password")
	if err := a.verifier.Verify(ctx, challenge, code); err != nil {
		return nil, a.fail(err)
	}
	a.state = StateVerified
	a.log.Info().Int("cookies", len(a.Session.Cookies(protectedDataPath))).Msg("session established")

	raw, err := a.fetcher.Fetch(ctx)
	if err != nil {
		return nil, a.fail(err)
	}
	a.state = StateDataFetched

	creds, err := extract(raw, a.log)
	if err != nil {
		return nil, a.fail(err)
	}

	a.result = &Result{Credentials: creds, Raw: raw}
	if !creds.Complete() {
		missing := strings.Join(creds.Missing(), ", ")
		return a.result, a.fail(NewError(ErrExtract, ErrExtractionIncomplete, 0, string(raw), "missing "+missing, nil))
	}

	a.state = StateDone
	a.log.Info().
		Str("account_id", creds.AccountID).
		Str("test_secret_key", maskSecret(creds.TestSecretKey)).
		Msg("credentials extracted")
	return a.result, nil
}

func (a *Authenticator) fail(err error) error {
	a.log.Error().Err(err).Str("state", a.state.String()).Msg("login aborted")
	a.state = StateFailed
	return err
}

// maskSecret keeps enough of a key to recognize it in logs.
func maskSecret(s string) string {
	const keep = 8
	if len(s) <= keep {
		return strings.Repeat("*", len(s))
	}
	return s[:keep] + strings.Repeat("*", len(s)-keep)
}
