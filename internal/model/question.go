package model

import "fmt"

const (
	// PlaceholderSubject 和 PlaceholderTopic 在没有分类器时占位
	PlaceholderSubject = "A definir"
	PlaceholderTopic   = "A definir"
	// OCRSubject 标记仅由 OCR 生成的溢出题目
	OCRSubject = "OCR"
)

// Question 从试卷 PDF 中提取的一道题
// swagger:model Question
type Question struct {
	ID            string   `json:"id"`
	Subject       string   `json:"subject"`
	Topic         string   `json:"topic"`
	TextPreview   string   `json:"text_preview"`
	Statement     string   `json:"statement"`
	Choices       []string `json:"choices"`
	Images        []string `json:"images"`
	CorrectAnswer string   `json:"correct_answer"`
}

// QuestionID 由试卷前缀和从 1 开始的序号组成，例如 ENEM2023_Q001
func QuestionID(prefix string, index int) string {
	return fmt.Sprintf("%s_Q%03d", prefix, index)
}

// NewQuestion 创建带占位元数据的题目，choices 和 images 序列化为 []
func NewQuestion(id, subject, body string, previewRunes int) Question {
	return Question{
		ID:            id,
		Subject:       subject,
		Topic:         PlaceholderTopic,
		TextPreview:   Truncate(body, previewRunes),
		Statement:     body,
		Choices:       []string{},
		Images:        []string{},
		CorrectAnswer: "",
	}
}

// Truncate 按字符（rune）截断，避免切断多字节字符
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
