package console

import (
	"context"
	"net/http"

	"github.com/zan8in/moongazing/pkg/api"
)

// ThirdPartyConfig holds the search engine credentials the backend uses
// for passive discovery.
type ThirdPartyConfig struct {
	FofaEmail         string `json:"fofa_email,omitempty"`
	FofaKey           string `json:"fofa_key,omitempty"`
	HunterKey         string `json:"hunter_key,omitempty"`
	QuakeKey          string `json:"quake_key,omitempty"`
	SecurityTrailsKey string `json:"securitytrails_key,omitempty"`
}

type ThirdPartyUpdate struct {
	Message           string   `json:"message"`
	ConfiguredSources []string `json:"configured_sources"`
}

type SettingsService struct {
	t Transport
}

func (s *SettingsService) ThirdParty(ctx context.Context) (*api.Response[ThirdPartyConfig], error) {
	resp, err := api.Invoke[struct {
		Config ThirdPartyConfig `json:"config"`
	}](ctx, s.t, http.MethodGet, "/thirdparty/config", nil, nil)
	if err != nil {
		return nil, err
	}
	return &api.Response[ThirdPartyConfig]{Code: resp.Code, Message: resp.Message, Data: resp.Data.Config}, nil
}

// UpdateThirdParty sends only the non-empty keys.
func (s *SettingsService) UpdateThirdParty(ctx context.Context, cfg ThirdPartyConfig) (*api.Response[ThirdPartyUpdate], error) {
	return api.Invoke[ThirdPartyUpdate](ctx, s.t, http.MethodPut, "/thirdparty/config", nil, cfg)
}

func (s *SettingsService) Sources(ctx context.Context) (*api.Response[[]string], error) {
	resp, err := api.Invoke[struct {
		Sources []string `json:"sources"`
	}](ctx, s.t, http.MethodGet, "/thirdparty/sources", nil, nil)
	if err != nil {
		return nil, err
	}
	sources := resp.Data.Sources
	if sources == nil {
		sources = []string{}
	}
	return &api.Response[[]string]{Code: resp.Code, Message: resp.Message, Data: sources}, nil
}
