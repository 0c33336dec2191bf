package executor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/registry"
	"go.uber.org/zap"
)

// Component names used by the Spotify flow.
const (
	ComponentArtistCard = "artistcard"
	ComponentPlayButton = "playbutton"
)

// Open launches an application or URL through the run dialog.
func (e *Executor) Open(ctx context.Context, app string) error {
	if err := e.Launch(ctx, app); err != nil {
		return fmt.Errorf("open %s: %w", app, err)
	}
	e.say("Opening: %s", app)
	e.logger.Info("opened application", zap.String("app", app))
	return nil
}

// Close terminates every process named app.
func (e *Executor) Close(ctx context.Context, app string) error {
	procs, err := e.processes()
	if err != nil {
		return err
	}
	if err := procs.Kill(ctx, app); err != nil {
		return fmt.Errorf("close %s: %w", app, err)
	}
	e.say("Closing %s", app)
	e.logger.Info("closed application", zap.String("app", app))
	return nil
}

// SearchURL builds the web search URL for terms.
func (e *Executor) SearchURL(terms string) string {
	return e.cfg.SearchURL + url.QueryEscape(strings.TrimSpace(terms))
}

// Search opens a web search for terms through the run dialog.
func (e *Executor) Search(ctx context.Context, terms string) error {
	if strings.TrimSpace(terms) == "" {
		return fmt.Errorf("empty search")
	}
	if err := e.Launch(ctx, e.SearchURL(terms)); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	e.say("Searching for: %s", terms)
	return nil
}

// TodoList opens the task list page.
func (e *Executor) TodoList(ctx context.Context, _ string) error {
	if err := e.Launch(ctx, e.cfg.TodoURL); err != nil {
		return fmt.Errorf("open task list: %w", err)
	}
	e.say("Opening task list")
	return nil
}

// Website opens target with the default handler. A bare host gets an
// https:// prefix.
func (e *Executor) Website(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("empty url")
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	procs, err := e.processes()
	if err != nil {
		return err
	}
	if err := procs.Open(ctx, target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	e.say("Opening website: %s", target)
	e.logger.Info("opened website", zap.String("url", target))
	return nil
}

// SpotifyURL builds the Spotify search URL for query.
func (e *Executor) SpotifyURL(query string) string {
	return e.cfg.SpotifySearchURL + url.PathEscape(strings.TrimSpace(query))
}

// Spotify searches Spotify in the browser, opens the top result and
// presses play.
func (e *Executor) Spotify(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("empty spotify query")
	}
	e.say("Searching Spotify for: %s", query)
	e.logger.Info("searching spotify", zap.String("query", query))
	if err := e.Navigate(ctx, e.SpotifyURL(query)); err != nil {
		return fmt.Errorf("spotify: %w", err)
	}

	if err := e.clickWhenFound(ctx, ComponentArtistCard); err != nil {
		return err
	}
	e.logger.Debug("first click - selecting search result")
	if err := e.sleep(ctx, time.Second); err != nil {
		return err
	}
	if err := e.clickWhenFound(ctx, ComponentPlayButton); err != nil {
		return err
	}
	e.logger.Debug("second click - playing music")
	return nil
}

// ClickComponent clicks an "x,y" coordinate or a named on-screen component.
func (e *Executor) ClickComponent(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)
	if t, ok := model.ParseTarget(target); ok {
		if err := e.Click(ctx, t); err != nil {
			return err
		}
		e.say("Clicked %s", t)
		return nil
	}
	if target == "" {
		return fmt.Errorf("nothing to click")
	}
	if err := e.clickWhenFound(ctx, target); err != nil {
		return err
	}
	e.say("Clicked %s", target)
	return nil
}

func (e *Executor) clickWhenFound(ctx context.Context, component string) error {
	if e.finder == nil {
		return fmt.Errorf("locate %s: no screen locator configured", component)
	}
	t, ok := e.finder.Wait(ctx, component)
	if !ok {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.logger.Warn("component not found on screen within timeout", zap.String("component", component))
		return registry.Skipped("%s not found on screen", component)
	}
	return e.Click(ctx, t)
}
