package datachannel

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/speakbright/agent-core/core/datachannel"

var logger = otelslog.NewLogger(scopeName)
