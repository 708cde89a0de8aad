package layout

import "fmt"

// InsufficientVocabularyError 表示每行词数上限超过词表中不同词的数量。
type InsufficientVocabularyError struct {
	Requested int
	Available int
}

func (e *InsufficientVocabularyError) Error() string {
	return fmt.Sprintf("词表不足: 每行最多需要 %d 个不同的词，但词表只有 %d 个", e.Requested, e.Available)
}

// CheckVocabulary 在生成前校验词表中不同词的数量能否满足每行最大词数。
func CheckVocabulary(vocabulary []string, maxWordsPerLine int) error {
	if n := len(DistinctWords(vocabulary)); maxWordsPerLine > n {
		return &InsufficientVocabularyError{Requested: maxWordsPerLine, Available: n}
	}
	return nil
}

// DistinctWords 按首次出现的顺序去重；没有重复时直接返回原切片。
func DistinctWords(vocabulary []string) []string {
	seen := make(map[string]bool, len(vocabulary))
	for i, w := range vocabulary {
		if !seen[w] {
			seen[w] = true
			continue
		}
		out := append([]string(nil), vocabulary[:i]...)
		for _, rest := range vocabulary[i+1:] {
			if !seen[rest] {
				seen[rest] = true
				out = append(out, rest)
			}
		}
		return out
	}
	return vocabulary
}
