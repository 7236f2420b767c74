// Package errorview renders the built-in error view shown when navigation
// fails and no fallback route is configured.
package errorview

import (
	"embed"
	"fmt"
	"html"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/vango-dev/wayfinder/pkg/outlet"
	"github.com/vango-dev/wayfinder/pkg/routeerr"
	"github.com/vango-dev/wayfinder/pkg/router"
	"github.com/vango-dev/wayfinder/pkg/vdom"
)

//go:embed locales/*.toml
var locales embed.FS

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	bundleErr  error
	strict     = bluemonday.StrictPolicy()
)

func loadBundle() (*i18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := i18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		for _, name := range []string{"locales/active.en.toml", "locales/active.ko.toml"} {
			if _, err := b.LoadMessageFileFS(locales, name); err != nil {
				bundleErr = fmt.Errorf("errorview: load %s: %w", name, err)
				return
			}
		}
		bundle = b
	})
	return bundle, bundleErr
}

// Languages returns the languages the view is translated into.
func Languages() []language.Tag {
	b, err := loadBundle()
	if err != nil {
		return []language.Tag{language.English}
	}
	return b.LanguageTags()
}

// View renders RouteErrors as a small page.
type View struct {
	localizer *i18n.Localizer
	home      string
	onBack    func()
}

// Option configures a View.
type Option func(*View)

// WithLanguage selects the display language from preference strings such
// as "ko" or an Accept-Language header value. Unknown languages fall back
// to English.
func WithLanguage(prefs ...string) Option {
	return func(v *View) {
		if b, err := loadBundle(); err == nil {
			v.localizer = i18n.NewLocalizer(b, prefs...)
		}
	}
}

// WithHome sets the target of the home link.
func WithHome(href string) Option {
	return func(v *View) {
		v.home = href
	}
}

// WithBack adds a "go back" button calling fn.
func WithBack(fn func()) Option {
	return func(v *View) {
		v.onBack = fn
	}
}

// New returns a view. Without options it renders English text and links
// home to "/".
func New(opts ...Option) *View {
	v := &View{home: "/"}
	WithLanguage("en")(v)
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Render builds the view for err. A nil err renders a generic failure.
func (v *View) Render(err *routeerr.RouteError) *vdom.VNode {
	if err == nil {
		err = routeerr.New(routeerr.KindUnknown, nil)
	}

	titleID := "ErrorTitle"
	if err.Kind == routeerr.KindNotFound {
		titleID = "NotFoundTitle"
	}
	code := err.CodeString()

	return vdom.Section(
		vdom.Class("u-error"),
		vdom.Role("alert"),
		vdom.Data("code", code),
		vdom.Div(vdom.Class("u-error-icon"), vdom.Attr{Key: "aria-hidden", Value: "true"}, icon(err.Code)),
		vdom.H1(v.text(titleID, nil)),
		vdom.P(vdom.Class("u-error-message"), sanitize(err.Message)),
		vdom.P(vdom.Class("u-error-code"), v.text("ErrorCode", map[string]any{"Code": code})),
		vdom.Nav(
			router.Link(v.home, v.text("GoHome", nil)),
			vdom.When(v.onBack != nil, func() *vdom.VNode {
				return vdom.Button(vdom.Type("button"), vdom.OnClick(v.onBack), v.text("GoBack", nil))
			}),
		),
	)
}

// Content is Render wrapped for an outlet.
func (v *View) Content(err *routeerr.RouteError) outlet.Content {
	return outlet.FromVNode(v.Render(err))
}

func (v *View) text(id string, data map[string]any) string {
	if v.localizer != nil {
		msg, err := v.localizer.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
		if err == nil {
			return msg
		}
	}
	if data != nil {
		return fmt.Sprintf("%s: %v", id, data["Code"])
	}
	return id
}

// sanitize strips markup from s. The result is mounted as text, so the
// entities the policy escapes are decoded again.
func sanitize(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}

func icon(code any) string {
	switch fmt.Sprint(code) {
	case "404":
		return "🔍"
	case "403":
		return "🔒"
	case "401":
		return "🔑"
	case "503":
		return "🛠️"
	default:
		return "⚠️"
	}
}
