package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DebugRecord 是单页布局的调试快照，附带生成该页时的上下文。
type DebugRecord struct {
	RunID  string  `json:"runId,omitempty"`
	Split  string  `json:"split"`
	Stem   string  `json:"stem"`
	Index  int     `json:"index"`
	Result *Result `json:"result"`
}

// WriteDebugJSON 将单页布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(rec DebugRecord, path string) error {
	if rec.Result == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
