package ideas

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tyler-sommer/stick"
)

// IdeasTemplateTag names the template BuildPrompt renders.
const IdeasTemplateTag = "ideas"

// ideasTemplate is rendered with title, body, comments and has_comments.
const ideasTemplate = `You are a pragmatic product strategist focused on small, buildable digital products.

Analyze the following Reddit discussion (post + comments) and identify concrete pain points, frustrations, unmet needs, or repeated patterns.

Your task is to generate 3 highly practical micro-SaaS or small product ideas that:

- Can be built by a solo developer or small team
- Are realistic and narrowly scoped
- Solve a specific pain point from the discussion
- Are suitable as:
  - A web app
  - A mobile app
  - A Chrome extension
  - A lightweight SaaS tool
  - A niche B2B utility
  - An automation tool

Do NOT generate:
- Large marketplaces
- Social networks
- Venture-scale platforms
- Ideas that require massive funding
- "Uber for X" concepts
- Overly generic AI wrappers

For each idea, provide:

1. Product Name (short and simple)
2. Target User (very specific niche)
3. Core Problem (clearly derived from the discussion)
4. MVP Feature Set (3-6 core features only)
5. Monetization Model (subscription, one-time payment, etc.)
6. Why This Is Feasible for a Solo Builder

Respond ONLY with a JSON array of objects using exactly these keys:
"product_name", "target_user", "core_problem", "mvp_features" (array of strings), "monetization", "feasibility".

Reddit Discussion:

Title:
{{ title }}

Body:
{{ body }}

{% if has_comments %}Top Comments:
{% for comment in comments %}- {{ comment }}
{% endfor %}{% endif %}`

// StickPromptProvider renders Twig templates with stick. It is fs-agnostic.
type StickPromptProvider struct {
	env       *stick.Env
	templates map[string]string
	vars      map[string]stick.Value
	tag       string
}

// PromptOption configures a StickPromptProvider.
type PromptOption func(*StickPromptProvider) error

// WithFS loads every *.twig file found under dir in the supplied FS,
// keyed by file name without extension.
func WithFS[F fs.FS](fsys F, dir string) PromptOption {
	return func(p *StickPromptProvider) error {
		return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".twig") {
				return nil
			}
			content, readErr := fs.ReadFile(fsys, path)
			if readErr != nil {
				return fmt.Errorf("read %s: %w", path, readErr)
			}
			tag := strings.TrimSuffix(filepath.Base(path), ".twig")
			p.templates[tag] = string(content)
			return nil
		})
	}
}

// WithTemplates lets you inject an in-memory map.
func WithTemplates(m map[string]string) PromptOption {
	return func(p *StickPromptProvider) error {
		for k, v := range m {
			p.templates[k] = v
		}
		return nil
	}
}

// WithVar adds a variable that will be available in all templates
func WithVar(key string, value any) PromptOption {
	return func(p *StickPromptProvider) error {
		p.vars[key] = value
		return nil
	}
}

// WithTemplateTag selects the template BuildPrompt renders.
func WithTemplateTag(tag string) PromptOption {
	return func(p *StickPromptProvider) error {
		p.tag = tag
		return nil
	}
}

// NewStickPromptProvider builds a provider preloaded with the default ideas template.
func NewStickPromptProvider(opts ...PromptOption) (*StickPromptProvider, error) {
	p := &StickPromptProvider{
		env:       stick.New(nil),
		templates: map[string]string{IdeasTemplateTag: ideasTemplate},
		vars:      make(map[string]stick.Value),
		tag:       IdeasTemplateTag,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if _, ok := p.templates[p.tag]; !ok {
		return nil, fmt.Errorf("template %q not found", p.tag)
	}
	return p, nil
}

// AddTemplate updates or inserts one template.
func (p *StickPromptProvider) AddTemplate(tag, tpl string) { p.templates[tag] = tpl }

// Ensure StickPromptProvider implements PromptProvider
var _ PromptProvider = (*StickPromptProvider)(nil)

// BuildPrompt renders the selected template for post. The comments section
// appears only when the post has comments.
func (p *StickPromptProvider) BuildPrompt(post *RedditPost) (string, error) {
	comments := post.Comments
	if comments == nil {
		comments = []string{}
	}
	return p.Render(p.tag, map[string]stick.Value{
		"url":          post.URL,
		"title":        post.Title,
		"body":         post.Body,
		"comments":     comments,
		"has_comments": len(comments) > 0,
	})
}

// Render executes the template for tag. Provider-wide variables are applied
// first so ctx wins on conflicts.
func (p *StickPromptProvider) Render(tag string, ctx map[string]stick.Value) (string, error) {
	tpl, ok := p.templates[tag]
	if !ok {
		return "", fmt.Errorf("template %q not found", tag)
	}

	templateCtx := make(map[string]stick.Value, len(p.vars)+len(ctx)+1)
	for k, v := range p.vars {
		templateCtx[k] = v
	}
	templateCtx["tag"] = tag
	for k, v := range ctx {
		templateCtx[k] = v
	}

	var out strings.Builder
	if err := p.env.Execute(tpl, &out, templateCtx); err != nil {
		return "", fmt.Errorf("execute %q: %w", tag, err)
	}
	return out.String(), nil
}
