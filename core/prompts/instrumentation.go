package prompts

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/speakbright/agent-core/core/prompts"

var logger = otelslog.NewLogger(scopeName)
