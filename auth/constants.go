package auth

import (
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
)

const (
	DefaultBaseURL   = "https://tazah1-dashboard.flatpeak.com"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"
	DefaultTimeout   = 60 * time.Second
)

// Endpoint paths relative to the base origin. The protected read multiplexes
// two procedures into one call.
const (
	loginEmailPath      = "/api/trpc/auth.loginEmail"
	authenticateOtpPath = "/api/trpc/auth.authenticateOtp"
	protectedDataPath   = "/api/trpc/user.current,keys.list"
)

var clientProfile = tls_client.Chrome_110
