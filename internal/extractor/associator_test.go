package extractor

import (
	"context"
	"errors"
	"testing"

	"question_extractor/internal/model"
)

type memorySaver struct {
	saved map[string][]byte
	fail  bool
}

func newMemorySaver() *memorySaver {
	return &memorySaver{saved: make(map[string][]byte)}
}

func (s *memorySaver) SaveImage(ctx context.Context, name string, data []byte) (string, error) {
	if s.fail {
		return "", errors.New("disk full")
	}
	s.saved[name] = data
	return "static/" + name, nil
}

func questionsN(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.NewQuestion(model.QuestionID("T", i+1), model.PlaceholderSubject, "body", 800)
	}
	return qs
}

func TestImageName(t *testing.T) {
	if got := ImageName("PROVA", 0, 1, ".png"); got != "images/PROVA_p1_img1.png" {
		t.Errorf("ImageName() = %q", got)
	}
	if got := ImageName("PROVA", 4, 3, ".jpg"); got != "images/PROVA_p5_img3.jpg" {
		t.Errorf("ImageName() = %q", got)
	}
}

func TestAssociateImages_ByPageWithClamp(t *testing.T) {
	qs := questionsN(2)
	images := []EmbeddedImage{
		{Page: 0, Index: 1, Ext: ".png"},
		{Page: 0, Index: 2, Ext: ".png"},
		{Page: 1, Index: 1, Ext: ".jpg"},
		{Page: 5, Index: 1, Ext: ".png"},
	}
	saver := newMemorySaver()

	n, err := AssociateImages(context.Background(), qs, images, "T", saver)
	if err != nil {
		t.Fatalf("AssociateImages() error = %v", err)
	}
	if n != 4 {
		t.Errorf("attached = %d, want 4", n)
	}

	want0 := []string{"static/images/T_p1_img1.png", "static/images/T_p1_img2.png"}
	want1 := []string{"static/images/T_p2_img1.jpg", "static/images/T_p6_img1.png"}
	if len(qs[0].Images) != 2 || qs[0].Images[0] != want0[0] || qs[0].Images[1] != want0[1] {
		t.Errorf("question 0 images = %v, want %v", qs[0].Images, want0)
	}
	if len(qs[1].Images) != 2 || qs[1].Images[0] != want1[0] || qs[1].Images[1] != want1[1] {
		t.Errorf("question 1 images = %v, want %v", qs[1].Images, want1)
	}
	if len(saver.saved) != 4 {
		t.Errorf("saved %d files, want 4 unique names", len(saver.saved))
	}
}

func TestAssociateImages_NoQuestionsSkipsStorage(t *testing.T) {
	saver := newMemorySaver()
	n, err := AssociateImages(context.Background(), nil, []EmbeddedImage{{Page: 0, Index: 1, Ext: ".png"}}, "T", saver)
	if err != nil || n != 0 {
		t.Fatalf("AssociateImages() = %d, %v; want 0, nil", n, err)
	}
	if len(saver.saved) != 0 {
		t.Errorf("images saved without questions: %v", saver.saved)
	}
}

func TestAssociateImages_NoImagesLeavesEmptyLists(t *testing.T) {
	qs := questionsN(3)
	if _, err := AssociateImages(context.Background(), qs, nil, "T", newMemorySaver()); err != nil {
		t.Fatal(err)
	}
	for i, q := range qs {
		if q.Images == nil || len(q.Images) != 0 {
			t.Errorf("question %d images = %#v, want empty non-nil list", i, q.Images)
		}
	}
}

func TestAssociateImages_SaveErrorAborts(t *testing.T) {
	saver := newMemorySaver()
	saver.fail = true
	_, err := AssociateImages(context.Background(), questionsN(1), []EmbeddedImage{{Page: 0, Index: 1, Ext: ".png"}}, "T", saver)
	if err == nil {
		t.Fatal("expected error from failing saver")
	}
}
