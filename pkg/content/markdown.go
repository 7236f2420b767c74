package content

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/vango-dev/wayfinder/pkg/location"
	"github.com/vango-dev/wayfinder/pkg/outlet"
	"github.com/vango-dev/wayfinder/pkg/router"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// markdownPolicy allows user-generated-content markup plus outlets, so a
// Markdown page can act as a layout.
func markdownPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
		policy.AllowNoAttrs().OnElements(outlet.TagName)
	})
	return policy
}

// RenderMarkdown converts src to sanitized HTML. Raw HTML in src is kept
// when the policy allows it and stripped otherwise.
func RenderMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("content: convert markdown: %w", err)
	}
	return markdownPolicy().Sanitize(buf.String()), nil
}

// Markdown renders src. The document is converted once, when the
// producer is created; conversion errors surface on every render.
func Markdown(src []byte) router.ContentFunc {
	out, err := RenderMarkdown(src)
	return func(context.Context, *location.Context) (outlet.Content, error) {
		if err != nil {
			return outlet.Content{}, err
		}
		return outlet.FromTemplate(templ.Raw(out)), nil
	}
}
