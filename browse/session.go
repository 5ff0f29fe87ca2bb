// CLAUDE:SUMMARY Opens stealth pages with resource blocking and exposes them as resolver document contexts.
package browse

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/cartwatch/resolve"
)

// Session wraps an open Rod page for one target URL.
type Session struct {
	Page    *rod.Page
	PageURL string
	manager *Manager
}

// Open creates a new page, navigates to the URL with stealth applied,
// and waits for the load event.
func (m *Manager) Open(ctx context.Context, pageURL string) (*Session, error) {
	b := m.Browser()
	if b == nil {
		return nil, fmt.Errorf("browse: no active browser")
	}

	var page *rod.Page
	var err error

	if *m.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browse: create page: %w", err)
	}

	if len(m.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(page, m.cfg.ResourceBlocking); err != nil {
			m.cfg.Logger.Warn("browse: resource blocking failed", "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browse: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browse: wait load timeout", "url", pageURL, "error", err)
	}

	return &Session{Page: page, PageURL: pageURL, manager: m}, nil
}

// Document exposes the live page as a resolver document context.
func (s *Session) Document() resolve.DocumentContext {
	return &pageDoc{page: s.Page}
}

// HTML serialises the current DOM as outer HTML.
func (s *Session) HTML(ctx context.Context) ([]byte, error) {
	res, err := s.Page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("browse: get DOM: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

// Close closes the page.
func (s *Session) Close() error {
	if s.Page != nil {
		return s.Page.Close()
	}
	return nil
}

// applyResourceBlocking hijacks requests and drops blocked resource types.
func applyResourceBlocking(page *rod.Page, types []string) error {
	blockSet := make(map[string]bool, len(types))
	for _, t := range types {
		blockSet[strings.ToLower(t)] = true
	}

	router := page.HijackRequests()
	router.MustAdd("*", func(ctx *rod.Hijack) {
		if shouldBlock(blockSet, string(ctx.Request.Type())) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()

	return nil
}

func shouldBlock(blockSet map[string]bool, resType string) bool {
	lower := strings.ToLower(resType)
	switch lower {
	case "image":
		return blockSet["images"]
	case "font":
		return blockSet["fonts"]
	case "media":
		return blockSet["media"]
	case "stylesheet":
		return blockSet["stylesheets"]
	}
	return blockSet[lower]
}
