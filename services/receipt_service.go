package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/edusphere/admissions_backend/configs"
	"github.com/edusphere/admissions_backend/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenerateAdmissionReceipt renders the admission receipt PDF for a
// newly enrolled student and stores its URL on the StudentRecord. Runs
// async after enrollment; a failure here is logged and never blocks or
// rolls back the enrollment itself.
func GenerateAdmissionReceipt(db *gorm.DB, applicantID uuid.UUID) {
	var record models.StudentRecord
	if err := db.Preload("Applicant").Where("applicant_id = ?", applicantID).First(&record).Error; err != nil {
		log.Printf("🔥 No student record for applicant %s, skipping receipt: %v", applicantID, err)
		return
	}

	if record.ReceiptURL != nil {
		return
	}

	htmlData, err := generateReceiptHTML(record)
	if err != nil {
		log.Printf("🔥 Failed to render receipt HTML for %s: %v", applicantID, err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF for %s: %v", applicantID, err)
		return
	}

	uploadURL, err := uploadReceipt(pdfBytes, applicantID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload receipt for %s: %v", applicantID, err)
		return
	}

	record.ReceiptURL = &uploadURL
	if err := db.Save(&record).Error; err != nil {
		log.Printf("🔥 Failed to store receipt URL for %s: %v", applicantID, err)
		return
	}
	log.Printf("✅ Admission receipt generated for applicant %s", applicantID)
}

func generateReceiptHTML(record models.StudentRecord) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	batch := ""
	if record.BatchID != nil {
		batch = *record.BatchID
	}

	data := struct {
		StudentName    string
		Batch          string
		FeePaid        string
		EnrollmentDate string
	}{
		StudentName:    record.Applicant.FullName,
		Batch:          batch,
		FeePaid:        fmt.Sprintf("%.2f", record.FeePaid),
		EnrollmentDate: record.EnrollmentDate.Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReceipt(fileBytes []byte, applicantID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", applicantID, uuid.New().String()),
		Folder:       "admissions_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
