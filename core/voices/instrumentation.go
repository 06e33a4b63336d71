package voices

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/speakbright/agent-core/core/voices"

var logger = otelslog.NewLogger(scopeName)
