package gemini

import "strings"

// Partial produces a fragment of text inserted around a status-20
// handler's body. Header partials run before the handler, footer
// partials after it; both receive the same RequestContext the handler
// received.
type Partial func(ctx *RequestContext) string

// composeHeader joins header partial outputs per §4.4: "H1\nH2\n" when
// any headers are present, empty otherwise.
func composeHeader(ctx *RequestContext, partials []Partial) string {
	if len(partials) == 0 {
		return ""
	}
	parts := make([]string, len(partials))
	for i, p := range partials {
		parts[i] = p(ctx)
	}
	return strings.Join(parts, "\n") + "\n"
}

// composeFooter joins footer partial outputs per §4.4: a single newline
// separator between the body and the first footer, then footers joined
// by newlines with no trailing newline.
func composeFooter(ctx *RequestContext, partials []Partial) string {
	if len(partials) == 0 {
		return ""
	}
	parts := make([]string, len(partials))
	for i, p := range partials {
		parts[i] = p(ctx)
	}
	return "\n" + strings.Join(parts, "\n")
}

// composeBody assembles the final status-20 wire body from the composed
// header, the handler's raw body, and the composed footer.
func composeBody(header string, body []byte, footer string) []byte {
	var b strings.Builder
	b.WriteString(header)
	b.Write(body)
	b.WriteString(footer)
	return []byte(b.String())
}

// PreRouteCallback runs once per request, before any module's
// OnPreRoute, and may observe (but not mutate) the request.
type PreRouteCallback func(ctx *HookContext)

// PostRouteCallback runs once per request, after every module's
// OnPostRoute, and may mutate the final ResponseModel before it is
// framed onto the wire.
type PostRouteCallback func(ctx *HookContext, resp *ResponseModel)
