package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	ServerKey     string `yaml:"serverKey" envconfig:"SMARTCAPTCHA_SERVER_KEY"`
	ClientKey     string `yaml:"clientKey" envconfig:"SMARTCAPTCHA_CLIENT_KEY"`
	ValidationURL string `yaml:"validationURL" envconfig:"SMARTCAPTCHA_VALIDATION_URL" default:"https://smartcaptcha.yandexcloud.net/validate"`
}

// Result is what the verifier reports back. Failures of any kind (transport,
// upstream status, malformed body) come back as Success=false; the verifier
// never lets an error escape its boundary.
type Result struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Host    string `json:"host,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Verifier posts captcha tokens to the validation endpoint. A zero server
// key means the capability is disabled; callers skip the check entirely.
type Verifier struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Verifier {
	return &Verifier{
		cfg: cfg,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log.Named("captcha"),
	}
}

func (v *Verifier) Enabled() bool {
	return v.cfg.ServerKey != ""
}

func (v *Verifier) ClientKey() string {
	return v.cfg.ClientKey
}

func (v *Verifier) Verify(ctx context.Context, token, userIP string) Result {
	if token == "" {
		return Result{Success: false, Error: "captcha token is missing"}
	}

	form := url.Values{}
	form.Set("secret", v.cfg.ServerKey)
	form.Set("token", token)
	form.Set("ip", userIP)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.ValidationURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return Result{Success: false, Status: "error", Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Error("captcha request failed", zap.Error(err))
		return Result{Success: false, Status: "error", Error: "captcha service unreachable"}
	}
	defer resp.Body.Close()

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Host    string `json:"host"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		v.log.Error("captcha response parse failed", zap.Error(err))
		return Result{Success: false, Status: "error", Error: "malformed captcha response"}
	}
	if resp.StatusCode != http.StatusOK {
		v.log.Error("captcha validation error",
			zap.Int("code", resp.StatusCode),
			zap.String("message", body.Message))
		return Result{Success: false, Status: "error", Error: "captcha server error"}
	}

	return Result{
		Success: body.Status == "ok",
		Status:  body.Status,
		Message: body.Message,
		Host:    body.Host,
	}
}
