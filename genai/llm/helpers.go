package llm

// MessageText returns the flattened text content of a message, preferring
// the legacy Content field and falling back to concatenating any text
// content items.
func MessageText(msg Message) string {
	if msg.Content != "" {
		return msg.Content
	}
	var text string
	for _, item := range msg.Items {
		if item.Type == ContentTypeText {
			if item.Text != "" {
				text += item.Text
				continue
			}
			text += item.Data
		}
	}
	return text
}
