package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// NewMarkdownConverter creates a reusable, goroutine-safe Converter for
// reducing widget fragments before they reach the extraction service:
//
//   - base plugin: strips script, style, iframe, noscript, head, meta,
//     link and HTML comments.
//   - commonmark plugin: standard Markdown rendering.
//   - table plugin: preserves table structure (the widgets are mostly
//     tables) with minimal cell padding to keep the instruction small.
func NewMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// ToMarkdown converts a widget fragment to Markdown. The domain resolves
// relative URLs in links so extracted url fields are absolute.
func ToMarkdown(conv *converter.Converter, fragment, domain string) (string, error) {
	return conv.ConvertString(fragment, converter.WithDomain(domain))
}
