package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/rcm-webdev/the-shop/models"
	"github.com/rcm-webdev/the-shop/pkg/inference"
	"github.com/rcm-webdev/the-shop/pkg/media"
	"github.com/rcm-webdev/the-shop/pkg/sheetimport"
	"github.com/rcm-webdev/the-shop/pkg/vision"
)

// mediaStore is opened in main; tests swap in a fake.
var mediaStore media.Store

// recognizeCard is swappable so handler tests don't need a tesseract install.
var recognizeCard = vision.Recognize

var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// ocrTimeout bounds each upload+OCR call; a timeout degrades to empty
// fragments rather than failing the request.
func ocrTimeout() time.Duration {
	if v := os.Getenv("OCR_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 15 * time.Second
}

// uploadedCard pairs the stored object with its OCR envelope.
type uploadedCard struct {
	URL      string
	PublicID string
	OCR      inference.Envelope
}

func readFormImage(file *multipart.FileHeader) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return nil, fmt.Errorf("file type %s is not supported", ext)
	}
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// uploadCard stores one card image and runs OCR over the same bytes.
func uploadCard(ctx context.Context, store media.Store, file *multipart.FileHeader, data []byte) (uploadedCard, error) {
	url, id, err := store.Upload(ctx, file.Filename, bytes.NewReader(data), int64(len(data)), file.Header.Get("Content-Type"))
	if err != nil {
		return uploadedCard{}, err
	}
	ocrCtx, cancel := context.WithTimeout(ctx, ocrTimeout())
	defer cancel()
	env := recognizeCard(ocrCtx, data)
	return uploadedCard{URL: url, PublicID: id, OCR: env}, nil
}

// uploadBothCards uploads front and back concurrently. If one side fails
// after the other stored its object, the stored object is destroyed so a
// failed create never leaves orphaned media behind.
func uploadBothCards(ctx context.Context, store media.Store, front, back *multipart.FileHeader, frontData, backData []byte) (uploadedCard, uploadedCard, error) {
	var f, b uploadedCard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		f, err = uploadCard(gctx, store, front, frontData)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = uploadCard(gctx, store, back, backData)
		return err
	})
	if err := g.Wait(); err != nil {
		// Compensate the half-uploaded case; re-destroy is idempotent on
		// the object store so a destroy failure is only logged.
		for _, c := range []uploadedCard{f, b} {
			if c.PublicID != "" {
				if derr := store.Destroy(ctx, c.PublicID); derr != nil {
					log.Printf("compensating destroy of %s failed: %v", c.PublicID, derr)
				}
			}
		}
		return uploadedCard{}, uploadedCard{}, err
	}
	return f, b, nil
}

// createPostHandler uploads the two card images, infers metadata from their
// OCR text, merges user-supplied fields on top and persists the post.
func createPostHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	frontFile, err := c.FormFile("frontImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "frontImage missing"})
		return
	}
	backFile, err := c.FormFile("backImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "backImage missing"})
		return
	}
	frontData, err := readFormImage(frontFile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	backData, err := readFormImage(backFile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	frontCard, backCard, err := uploadBothCards(c.Request.Context(), mediaStore, frontFile, backFile, frontData, backData)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "media upload failed"})
		return
	}

	ov := inference.Overrides{
		Title:   strings.TrimSpace(c.PostForm("title")),
		Caption: strings.TrimSpace(c.PostForm("caption")),
		Tags:    inference.SplitTags(c.PostForm("tags")),
	}
	fields, err := inference.InferFields(
		inference.CollectFragments(frontCard.OCR),
		inference.CollectFragments(backCard.OCR),
		ov,
	)
	if errors.Is(err, inference.ErrNoModelDetected) {
		if ov.Title == "" {
			// Distinct failure mode: without a model guess and without a
			// user title there is nothing to name the post. The stored
			// objects are rolled back so the pair invariant holds.
			for _, id := range []string{frontCard.PublicID, backCard.PublicID} {
				if derr := mediaStore.Destroy(c.Request.Context(), id); derr != nil {
					log.Printf("rollback destroy of %s failed: %v", id, derr)
				}
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "no car model detected; please enter a title manually",
				"code":  "no_model_detected",
			})
			return
		}
		// Manual title supplied: proceed with the user's fields only.
		fields = inference.PostFields{Title: ov.Title, Caption: ov.Caption, Tags: ov.Tags}
		err = nil
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "inference failed"})
		return
	}

	year := 0
	if fields.Year != "" {
		year, _ = strconv.Atoi(fields.Year)
	}
	post := models.Post{
		Title:             fields.Title,
		FrontImage:        frontCard.URL,
		BackImage:         backCard.URL,
		FrontImageMediaID: frontCard.PublicID,
		BackImageMediaID:  backCard.PublicID,
		Caption:           fields.Caption,
		Tags:              pq.StringArray(fields.Tags),
		UserID:            user.ID,
		ToyNumber:         fields.ToyNumber,
		Year:              year,
		Series:            fields.Series,
		Condition:         strings.TrimSpace(c.PostForm("condition")),
		BoxNumber:         strings.TrimSpace(c.PostForm("boxNumber")),
	}
	if err := db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// updatePostHandler edits the user-editable metadata of an owned post.
func updatePostHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var post models.Post
	if err := db.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if post.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var req struct {
		Title     *string   `json:"title"`
		Caption   *string   `json:"caption"`
		Tags      *[]string `json:"tags"`
		Condition *string   `json:"condition"`
		IsSold    *bool     `json:"is_sold"`
		BoxNumber *string   `json:"box_number"`
		ToyNumber *string   `json:"toy_number"`
		Series    *string   `json:"series"`
		Year      *int      `json:"year"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Caption != nil {
		post.Caption = *req.Caption
	}
	if req.Tags != nil {
		post.Tags = pq.StringArray(*req.Tags)
	}
	if req.Condition != nil {
		post.Condition = *req.Condition
	}
	if req.IsSold != nil {
		post.IsSold = *req.IsSold
	}
	if req.BoxNumber != nil {
		post.BoxNumber = *req.BoxNumber
	}
	if req.ToyNumber != nil {
		post.ToyNumber = *req.ToyNumber
	}
	if req.Series != nil {
		post.Series = *req.Series
	}
	if req.Year != nil {
		post.Year = *req.Year
	}
	if err := db.Save(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, post)
}

func likePostHandler(c *gin.Context) {
	if err := db.Model(&models.Post{}).Where("id = ?", c.Param("id")).
		UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "like failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "liked"})
}

// destroyCardMedia removes both stored card objects. Both destroys must
// succeed; the post record and its media live and die together.
func destroyCardMedia(ctx context.Context, store media.Store, post *models.Post) error {
	var firstErr error
	for _, id := range []string{post.FrontImageMediaID, post.BackImageMediaID} {
		if id == "" {
			continue
		}
		if err := store.Destroy(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// deletePostHandler removes an owned post and its two media objects.
func deletePostHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var post models.Post
	if err := db.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if post.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := destroyCardMedia(c.Request.Context(), mediaStore, &post); err != nil {
		log.Printf("media destroy failed for post %d: %v", post.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "media destroy failed"})
		return
	}
	if err := db.Delete(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// importSheetHandler bulk-creates posts from an uploaded xlsx catalog.
func importSheetHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	file, err := c.FormFile("sheet")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sheet missing"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open sheet"})
		return
	}
	defer f.Close()
	rows, err := sheetimport.Read(f, c.PostForm("sheetName"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created := 0
	for _, row := range rows {
		post := models.Post{
			Title:           row.Title,
			FrontImage:      row.FrontImage,
			BackImage:       row.BackImage,
			Caption:         "",
			Tags:            pq.StringArray{row.ToyNumber},
			UserID:          user.ID,
			WheelVariations: pq.StringArray(row.WheelVariations),
			ToyNumber:       row.ToyNumber,
			BoxNumber:       row.BoxNumber,
			Year:            row.Year,
			Series:          row.Series,
		}
		if err := db.Create(&post).Error; err != nil {
			log.Printf("sheet import: create %q failed: %v", row.Title, err)
			continue
		}
		created++
	}
	c.JSON(http.StatusOK, gin.H{"imported": created, "rows": len(rows)})
}
