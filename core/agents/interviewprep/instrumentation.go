package interviewprep

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/speakbright/agent-core/core/agents/interviewprep"

var logger = otelslog.NewLogger(scopeName)
