package app

import (
	"context"
	"errors"
	"log"
	"net/url"
	"regexp"
	"strings"

	"brandreply/internal/model"
	"brandreply/internal/repository"
)

var (
	ErrInvalidEmailAddress = errors.New("invalid email address format")
	ErrInvalidSlackURL     = errors.New("invalid Slack webhook URL, must be from hooks.slack.com")
	ErrInboundAddressTaken = errors.New("this inbound email address is already in use by another user")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const slackWebhookHost = "hooks.slack.com"

// ConfigService manages each tenant's inbound address and Slack webhook and
// resolves inbound addresses to tenants for the webhook receiver.
type ConfigService struct {
	repo  TenantConfigs
	cache ConfigCache
}

type UpsertConfigInput struct {
	UserID              uint
	SlackWebhookURL     *string
	InboundEmailAddress *string
}

func NewConfigService(repo TenantConfigs, cache ConfigCache) *ConfigService {
	return &ConfigService{repo: repo, cache: cache}
}

func (s *ConfigService) Get(userID uint) (*model.UserEmailSlackConfig, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByUserID(userID)
}

// Upsert validates both fields before anything is persisted and replaces the
// tenant's config wholesale. A duplicate inbound address, whether caught by
// the pre-check or by the unique index, yields ErrInboundAddressTaken.
func (s *ConfigService) Upsert(ctx context.Context, input UpsertConfigInput) (*model.UserEmailSlackConfig, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	var slackURL *string
	if input.SlackWebhookURL != nil && strings.TrimSpace(*input.SlackWebhookURL) != "" {
		v := strings.TrimSpace(*input.SlackWebhookURL)
		if err := validateSlackWebhookURL(v); err != nil {
			return nil, err
		}
		slackURL = &v
	}

	var inbound *string
	if input.InboundEmailAddress != nil && strings.TrimSpace(*input.InboundEmailAddress) != "" {
		v := strings.ToLower(strings.TrimSpace(*input.InboundEmailAddress))
		if !emailPattern.MatchString(v) {
			return nil, ErrInvalidEmailAddress
		}
		existing, err := s.repo.GetByInboundAddress(v)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.UserID != input.UserID {
			return nil, ErrInboundAddressTaken
		}
		inbound = &v
	}

	prev, err := s.repo.GetByUserID(input.UserID)
	if err != nil {
		return nil, err
	}

	cfg := &model.UserEmailSlackConfig{
		UserID:              input.UserID,
		SlackWebhookURL:     slackURL,
		InboundEmailAddress: inbound,
	}
	if err := s.repo.Upsert(cfg); err != nil {
		if errors.Is(err, repository.ErrDuplicateInboundAddress) {
			return nil, ErrInboundAddressTaken
		}
		return nil, err
	}

	if s.cache != nil {
		if prev != nil && prev.InboundEmailAddress != nil {
			if err := s.cache.DeleteByAddress(ctx, *prev.InboundEmailAddress); err != nil {
				log.Printf("invalidate config cache failed: %v", err)
			}
		}
		if inbound != nil {
			if err := s.cache.DeleteByAddress(ctx, *inbound); err != nil {
				log.Printf("invalidate config cache failed: %v", err)
			}
		}
	}
	return cfg, nil
}

// ResolveByInboundAddress returns the tenant config owning the given inbound
// address, or nil when no tenant holds it. Reads go through the redis cache;
// cache failures fall back to the database.
func (s *ConfigService) ResolveByInboundAddress(ctx context.Context, address string) (*model.UserEmailSlackConfig, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return nil, nil
	}

	if s.cache != nil {
		cfg, ok, err := s.cache.GetByAddress(ctx, address)
		if err != nil {
			log.Printf("config cache read failed: %v", err)
		} else if ok {
			return cfg, nil
		}
	}

	cfg, err := s.repo.GetByInboundAddress(address)
	if err != nil {
		return nil, err
	}
	if cfg != nil && s.cache != nil {
		if err := s.cache.SetByAddress(ctx, address, cfg); err != nil {
			log.Printf("config cache write failed: %v", err)
		}
	}
	return cfg, nil
}

func validateSlackWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidSlackURL
	}
	if !strings.Contains(u.Hostname(), slackWebhookHost) {
		return ErrInvalidSlackURL
	}
	return nil
}
