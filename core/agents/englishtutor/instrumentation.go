package englishtutor

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/speakbright/agent-core/core/agents/englishtutor"

var logger = otelslog.NewLogger(scopeName)
