package queues

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestLogPublisher_PublishResult(t *testing.T) {
	msg := "fetch_round: transport error"
	tests := []struct {
		name string
		res  *BattleResult
		want []string
	}{
		{
			name: "success",
			res:  &BattleResult{BattleID: "b1", Status: StatusSuccess, Victories: 3, Defeats: 1},
			want: []string{`"level":"info"`, `"battleId":"b1"`, `"victories":3`, `"defeats":1`},
		},
		{
			name: "failure carries error",
			res:  &BattleResult{BattleID: "b2", Status: StatusFailure, ErrorMessage: &msg},
			want: []string{`"level":"warn"`, `"battleId":"b2"`, `"status":"Failure"`, `"error":"fetch_round: transport error"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := log.Logger
			log.Logger = zerolog.New(&buf)
			defer func() { log.Logger = prev }()

			if err := (LogPublisher{}).PublishResult(context.Background(), tt.res); err != nil {
				t.Fatalf("PublishResult() err=%#v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("log line %#v missing %#v", out, w)
				}
			}
		})
	}
}
