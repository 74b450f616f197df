package extractor

import (
	"context"
	"fmt"

	"question_extractor/internal/model"
)

// ImageSaver persists an extracted image and returns the path recorded on the question.
type ImageSaver interface {
	SaveImage(ctx context.Context, name string, data []byte) (string, error)
}

// ImageName is deterministic per (prefix, page, index): extracting the same file
// again overwrites the previous images instead of creating new ones.
func ImageName(prefix string, page, index int, ext string) string {
	return fmt.Sprintf("images/%s_p%d_img%d%s", prefix, page+1, index, ext)
}

// AssociateImages stores every image and appends its path to the question whose
// position equals the image's page index, clamped to the last question. Nothing
// is stored when there are no questions. It returns the number of images attached.
func AssociateImages(ctx context.Context, questions []model.Question, images []EmbeddedImage, prefix string, saver ImageSaver) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}

	attached := 0
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return attached, err
		}

		path, err := saver.SaveImage(ctx, ImageName(prefix, img.Page, img.Index, img.Ext), img.Data)
		if err != nil {
			return attached, fmt.Errorf("save image p%d/%d: %w", img.Page+1, img.Index, err)
		}

		target := img.Page
		if target >= len(questions) {
			target = len(questions) - 1
		}
		if target < 0 {
			target = 0
		}
		questions[target].Images = append(questions[target].Images, path)
		attached++
	}
	return attached, nil
}
