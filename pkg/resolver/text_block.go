package resolver

// TextBlock is an in-memory Target over a plain string.
type TextBlock struct {
	text string
	html string
}

func NewTextBlock(text string) *TextBlock {
	return &TextBlock{text: text}
}

func (b *TextBlock) Text() string { return b.text }

func (b *TextBlock) Render(updated string) {
	b.text = updated
	b.html = RenderHTML(updated)
}

// HTML returns the rendered wrapper, or "" when the block was never
// rendered.
func (b *TextBlock) HTML() string { return b.html }

var _ Target = (*TextBlock)(nil)
