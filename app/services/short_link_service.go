package services

import (
	"encoding/base32"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"fairway/app/models"
	"fairway/app/repositories"
)

const shortCodeLength = 7

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ShortLinkService shortens landing page URLs for message bodies
type ShortLinkService struct {
	links   repositories.ShortLinkRepository
	baseURL string
	log     *zap.Logger
}

// NewShortLinkService creates a new ShortLinkService. baseURL is the public
// origin short links are served from.
func NewShortLinkService(links repositories.ShortLinkRepository, baseURL string, log *zap.Logger) *ShortLinkService {
	return &ShortLinkService{links: links, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// ShortCode derives the code candidates for target: the lowercase base32
// SHA3-256 digest, read 7 characters at a time and growing on collision.
func ShortCode(target string, length int) string {
	sum := sha3.Sum256([]byte(target))
	enc := strings.ToLower(codeEncoding.EncodeToString(sum[:]))
	if length > len(enc) {
		length = len(enc)
	}
	return enc[:length]
}

// Shorten returns the short link for target, creating it on first use
func (s *ShortLinkService) Shorten(target string) (*models.ShortLink, error) {
	target = strings.TrimSpace(target)
	u, err := url.Parse(target)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, invalid("유효한 URL이 아닙니다.")
	}

	if existing, err := s.links.FindByTarget(target); err == nil {
		return existing, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	full := len(ShortCode(target, 1<<10))
	for n := shortCodeLength; n <= full; n++ {
		link := &models.ShortLink{Code: ShortCode(target, n), TargetURL: target}
		link.BeforeCreate()
		if err := link.Validate(); err != nil {
			return nil, invalid(fmt.Sprintf("invalid short link: %v", err))
		}
		err := s.links.Create(link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return nil, err
		}
		s.log.Debug("short code collision", zap.String("code", link.Code))
	}
	return nil, fmt.Errorf("no free short code for %s: %w", target, repositories.ErrConflict)
}

// Resolve returns the link for code and counts the hit
func (s *ShortLinkService) Resolve(code string) (*models.ShortLink, error) {
	return s.links.IncrementHits(strings.ToLower(strings.TrimSpace(code)))
}

// URL is the public address of a short link
func (s *ShortLinkService) URL(link *models.ShortLink) string {
	return s.baseURL + "/s/" + link.Code
}
