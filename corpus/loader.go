package corpus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/smartbot/core"
)

// datasetRecord is the on-disk shape of one QA pair. Both long and short
// field names are accepted.
type datasetRecord struct {
	Question string `json:"question"`
	Q        string `json:"q"`
	Answer   string `json:"answer"`
	A        string `json:"a"`
}

// LoadDataset reads a JSON dataset of question/answer records.
//
// Each record carries a question under "question" or "q" and an answer under
// "answer" or "a". Records missing either field are kept with an empty
// string; records that fail to decode are skipped with a log entry rather
// than failing the whole load. Questions are stored normalized.
func LoadDataset(path string) ([]core.QAEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", path, err)
	}

	logger := slog.Default().With("component", "corpus-loader")

	entries := make([]core.QAEntry, 0, len(raw))
	for i, msg := range raw {
		var rec datasetRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			logger.Warn("skipping malformed dataset record", "index", i, "err", err)
			continue
		}

		question := rec.Question
		if question == "" {
			question = rec.Q
		}
		answer := rec.Answer
		if answer == "" {
			answer = rec.A
		}

		entries = append(entries, core.QAEntry{
			Question: core.Normalize(question),
			Answer:   answer,
		})
	}

	logger.Info("dataset loaded", "path", path, "entries", len(entries), "skipped", len(raw)-len(entries))
	return entries, nil
}
