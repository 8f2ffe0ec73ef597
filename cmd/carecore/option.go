package main

// Options are the root command's flags, interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Config         string `short:"f" long:"config" description:"orchestration config YAML path" required:"true"`
	ConversationID string `short:"c" long:"conversation" description:"conversation id for this turn" default:"default"`
	Message        string `short:"m" long:"message" description:"user message text for a single turn"`
	Gops           bool   `long:"gops" description:"start the gops diagnostics agent"`
}
