package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"question_extractor/internal/model"
)

// QuestionRepository 基于单个 JSON 数组文件的题库，只追加不修改
//
// 每次追加都会完整读取并重写文件。mu 只保证同一进程内的读改写串行，
// 多个进程共享同一文件时没有任何保护。
type QuestionRepository struct {
	path string
	mu   sync.Mutex
}

func NewQuestionRepository(path string) *QuestionRepository {
	return &QuestionRepository{path: path}
}

// FindAll 返回题库中的全部题目，文件不存在时创建空数组文件
func (r *QuestionRepository) FindAll() ([]model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	questions, err := r.load()
	if errors.Is(err, fs.ErrNotExist) {
		questions = []model.Question{}
		if err := r.write(questions); err != nil {
			return nil, err
		}
		return questions, nil
	}
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Append 把新题目追加到已有题库末尾并重写文件，返回追加后的总数
func (r *QuestionRepository) Append(questions []model.Question) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.load()
	if errors.Is(err, fs.ErrNotExist) {
		existing = []model.Question{}
	} else if err != nil {
		return 0, err
	}

	merged := append(existing, questions...)
	if err := r.write(merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}

func (r *QuestionRepository) load() ([]model.Question, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}

	questions := []model.Question{}
	if len(data) == 0 {
		return questions, nil
	}
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return questions, nil
}

// write 先写临时文件再重命名，避免进程崩溃时留下半个 JSON
func (r *QuestionRepository) write(questions []model.Question) error {
	if questions == nil {
		questions = []model.Question{}
	}

	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}
