package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/internal/apiclient"
	"github.com/devscout/github-leadgen/internal/model"
	"github.com/devscout/github-leadgen/pkg/log"
)

// HttpLinkedinProvider talks to a commercial professional-network data API.
// A 402 from the provider means the prepaid credits ran out; that condition
// is the one enrichment failure that must stop the whole crawl.
type HttpLinkedinProvider struct {
	Logger     log.Logger
	Config     *cfg.Config
	client     *apiclient.Client
	httpClient *http.Client
}

func NewHttpLinkedinProvider(logger log.Logger, config *cfg.Config) *HttpLinkedinProvider {
	return &HttpLinkedinProvider{
		Logger:     logger,
		Config:     config,
		client:     apiclient.NewClient(logger, config),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type profileLookupResponse struct {
	Url string `json:"url"`
}

type experienceResponse struct {
	Experience string `json:"experience"`
}

type companyResponse struct {
	Insights string `json:"insights"`
}

// FindProfileUrl resolves a LinkedIn profile URL from the scraped identity.
// An empty result means the provider found nothing; that is persisted so the
// lookup is not repeated.
func (p *HttpLinkedinProvider) FindProfileUrl(ctx context.Context, user *model.User) (string, error) {
	query := url.Values{}
	query.Set("name", user.Name)
	query.Set("company", user.Company)
	query.Set("github", user.Login)
	endpoint := fmt.Sprintf("%s/lookup?%s", p.Config.Enrich.LinkedinApiUrl, query.Encode())

	result := &profileLookupResponse{}
	if err := p.get(ctx, endpoint, result); err != nil {
		return "", err
	}
	return result.Url, nil
}

func (p *HttpLinkedinProvider) FetchExperience(ctx context.Context, profileUrl string) (string, error) {
	endpoint := fmt.Sprintf("%s/profile?url=%s", p.Config.Enrich.LinkedinApiUrl, url.QueryEscape(profileUrl))
	result := &experienceResponse{}
	if err := p.get(ctx, endpoint, result); err != nil {
		return "", err
	}
	return result.Experience, nil
}

func (p *HttpLinkedinProvider) EmployerInsights(ctx context.Context, company string) (string, error) {
	endpoint := fmt.Sprintf("%s/company?name=%s", p.Config.Enrich.LinkedinApiUrl, url.QueryEscape(company))
	result := &companyResponse{}
	if err := p.get(ctx, endpoint, result); err != nil {
		return "", err
	}
	return result.Insights, nil
}

func (p *HttpLinkedinProvider) get(ctx context.Context, endpoint string, v interface{}) error {
	return p.client.Call(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		if p.Config.Enrich.LinkedinApiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.Config.Enrich.LinkedinApiKey)
		}

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusPaymentRequired:
			return ErrCreditsExhausted
		case resp.StatusCode == http.StatusNotFound:
			// Provider has no data; decode target keeps its zero values
			return nil
		case resp.StatusCode >= 500:
			return &apiclient.ServerError{Status: resp.StatusCode}
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("linkedin provider: unexpected response: %s", resp.Status)
		}

		return json.NewDecoder(resp.Body).Decode(v)
	})
}
