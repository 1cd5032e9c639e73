package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// MaxAttachmentSize is the largest attachment accepted, 10 MiB.
const MaxAttachmentSize = 10 * 1024 * 1024

const maxAnswerIndex = models.QuestionOptionCount - 1

// AllowedAttachmentTypes lists the accepted attachment MIME types.
var AllowedAttachmentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateAssignmentDraft checks a draft before it becomes an assignment. The
// order of the result follows the form top to bottom, so the first entry is
// the one to show.
func (bv *BusinessValidator) ValidateAssignmentDraft(d *models.AssignmentDraft) ValidationErrors {
	var errors ValidationErrors

	if strings.TrimSpace(d.InstructorID) == "" {
		errors = append(errors, ValidationError{
			Field:   "instructor_id",
			Message: "instructor must be selected",
			Rule:    "required",
		})
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: "assignment title is required",
			Rule:    "required",
		})
	} else if len([]rune(title)) > 200 {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: "title must be between 1 and 200 characters",
			Value:   len([]rune(title)),
			Rule:    "assignment_title",
		})
	}

	if len(d.Questions) == 0 {
		errors = append(errors, ValidationError{
			Field:   "questions",
			Message: "at least one question is required",
			Rule:    "required",
		})
	}

	for i, q := range d.Questions {
		if strings.TrimSpace(q.Text) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].text", i),
				Message: fmt.Sprintf("question %d text is required", i+1),
				Rule:    "required",
			})
		}
		for j := 0; j < models.QuestionOptionCount; j++ {
			if j >= len(q.Options) || strings.TrimSpace(q.Options[j]) == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("questions[%d].options[%d]", i, j),
					Message: fmt.Sprintf("question %d, option %d is required", i+1, j+1),
					Rule:    "required",
				})
			}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].correct_answer", i),
				Message: fmt.Sprintf("question %d correct answer must reference an option", i+1),
				Value:   q.CorrectAnswer,
				Rule:    "answer_index",
			})
		}
	}

	return errors
}

// ValidateAttachment enforces the size limit and the MIME whitelist.
func (bv *BusinessValidator) ValidateAttachment(meta *AttachmentMeta) ValidationErrors {
	errors := bv.Validate(meta)

	if meta.Size > MaxAttachmentSize {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "file size exceeds 10MB",
			Value:   meta.Size,
			Rule:    "max_size",
		})
	}

	if meta.ContentType != "" && !AllowedAttachmentTypes[normalizeContentType(meta.ContentType)] {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "invalid file type. Allowed: PDF, Word, PowerPoint, images",
			Value:   meta.ContentType,
			Rule:    "mime_type",
		})
	}

	return errors
}

// ValidateQuizAnswers requires one in-range answer per question.
func (bv *BusinessValidator) ValidateQuizAnswers(req *QuizSubmitRequest, questions []models.Question) ValidationErrors {
	errors := bv.Validate(req)
	if len(errors) > 0 {
		return errors
	}

	if len(req.Answers) != len(questions) {
		return ValidationErrors{{
			Field:   "answers",
			Message: fmt.Sprintf("expected %d answers, got %d", len(questions), len(req.Answers)),
			Value:   len(req.Answers),
			Rule:    "answer_count",
		}}
	}

	for i, q := range questions {
		if req.Answers[i] >= len(q.Options) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("answers[%d]", i),
				Message: fmt.Sprintf("answer for question %d is not one of its options", i+1),
				Value:   req.Answers[i],
				Rule:    "answer_index",
			})
		}
	}

	return errors
}

func normalizeContentType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Title validation (1-200 characters)
	bv.validate.RegisterValidation("assignment_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		n := len([]rune(title))
		return n >= 1 && n <= 200
	})

	bv.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// Option index of a five-option question
	bv.validate.RegisterValidation("answer_index", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				return true
			}
			field = field.Elem()
		}
		v := field.Int()
		return v >= 0 && v <= maxAnswerIndex
	})

	// Due date validation (must be in future)
	bv.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		field := fl.Field()

		if field.Kind() == reflect.Ptr && field.IsNil() {
			return true
		}

		var dueDate time.Time
		if field.Kind() == reflect.Ptr {
			dueDate = field.Elem().Interface().(time.Time)
		} else {
			dueDate = field.Interface().(time.Time)
		}

		return dueDate.After(time.Now())
	})
}
