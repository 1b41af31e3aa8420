package filter

import (
	"context"
	"testing"

	"github.com/mikey/sms-risk-detector/internal/adapters/corpus"
	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/utils"
	"github.com/mikey/sms-risk-detector/internal/whitelist"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const spamText = "win free money now click http://spam.biz"

func trainingSource() *corpus.MemorySource {
	pairs := [][2]string{
		{"ham", "are we still meeting for lunch tomorrow"},
		{"ham", "lunch tomorrow at the usual place"},
		{"ham", "can you call me after the meeting"},
		{"ham", "the meeting moved to tomorrow morning"},
		{"ham", "call me when you get home tonight"},
		{"ham", "dinner tonight at home with the family"},
		{"ham", "see you at dinner tonight"},
		{"ham", "please call mom about dinner"},
		{"ham", "running late for the meeting sorry"},
		{"ham", "sorry I missed your call yesterday"},
	}
	for i := 0; i < 10; i++ {
		pairs = append(pairs, [2]string{"spam", spamText})
	}
	return corpus.NewMemorySource("fixture", pairs...)
}

func newTestService(t *testing.T, metrics core.MetricsRecorder, whitelisted ...string) *core.RiskService {
	t.Helper()
	logger := zap.NewNop()
	src := trainingSource()
	trainer := core.NewTrainer(core.DefaultTrainOptions(), utils.NewTextProcessor(logger), logger)

	bundle, err := trainer.Train(context.Background(), src)
	require.NoError(t, err)

	return core.NewRiskService(bundle, trainer, src, nil, core.CacheSettings{},
		whitelist.NewChecker(whitelisted, logger), metrics, logger)
}
