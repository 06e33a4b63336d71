package agents

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/speakbright/agent-core/core/agents"

var logger = otelslog.NewLogger(scopeName)
