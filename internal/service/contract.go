package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"contractapi/internal/extraction"
	"contractapi/internal/llm"
	"contractapi/internal/logging"
	"contractapi/internal/metrics"
	"contractapi/internal/model"
	"contractapi/internal/report"
	"contractapi/internal/repository"
	"contractapi/internal/retry"
	"contractapi/internal/storage"
	"contractapi/internal/textextract"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrInvalidID  = errors.New("id must be a UUID")
	ErrNotFound   = errors.New("extraction not found")
	ErrNoArtifact = errors.New("no stored file for this extraction")
)

const historyTimeout = 5 * time.Second

// Completer sends a prompt to the model and returns the full response text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Artifacts stores uploaded contracts. *storage.ArtifactStore satisfies it.
type Artifacts interface {
	Upload(ctx context.Context, data []byte, filename string) (storage.Artifact, error)
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ExtractionListResult is the service-level DTO for paginated history.
type ExtractionListResult struct {
	Items []model.Extraction `json:"data"`
	Total int                `json:"total"`
}

// ContractService runs the extraction pipeline and exposes its history.
type ContractService interface {
	// Process runs one pipeline invocation. It never returns nil; failures are
	// reported in the result with a fully shaped StructuredData.
	Process(ctx context.Context, req model.UploadRequest) *model.PipelineResult

	// List returns history newest first using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*ExtractionListResult, error)

	// Get returns a single history record by its ID.
	Get(ctx context.Context, id string) (*model.Extraction, error)

	// FileURL returns a fresh download URL for the stored contract.
	FileURL(ctx context.Context, id string) (string, error)

	// Delete removes a record and its stored contract.
	Delete(ctx context.Context, id string) error
}

// Options wires the collaborators of the pipeline. Artifacts may be nil, in
// which case uploads are skipped and results carry no URL.
type Options struct {
	Artifacts Artifacts
	Extractor textextract.Extractor
	Model     Completer
	Retrier   *retry.Retrier
	Repo      repository.ExtractionRepository
	Metrics   *metrics.Pipeline
	Logger    *zap.Logger
	// Timeout bounds one Process call; zero means no limit.
	Timeout time.Duration
}

type contractService struct {
	artifacts Artifacts
	extractor textextract.Extractor
	model     Completer
	retrier   *retry.Retrier
	repo      repository.ExtractionRepository
	metrics   *metrics.Pipeline
	log       *zap.Logger
	tracer    trace.Tracer
	timeout   time.Duration
	now       func() time.Time
}

// NewContractService constructs a ContractService.
func NewContractService(o Options) ContractService {
	s := &contractService{
		artifacts: o.Artifacts,
		extractor: o.Extractor,
		model:     o.Model,
		retrier:   o.Retrier,
		repo:      o.Repo,
		metrics:   o.Metrics,
		log:       o.Logger,
		tracer:    otel.Tracer("contractapi/internal/service"),
		timeout:   o.Timeout,
		now:       time.Now,
	}
	if s.retrier == nil {
		p := retry.DefaultPolicy()
		p.Retryable = llm.IsRetryable
		s.retrier = retry.New(p)
	}
	if s.repo == nil {
		s.repo = repository.Noop{}
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNop()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

type uploadResult struct {
	artifact storage.Artifact
	err      error
}

func (s *contractService) Process(ctx context.Context, req model.UploadRequest) *model.PipelineResult {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "pipeline.process", trace.WithAttributes(
		attribute.String("contract.filename", req.Filename),
		attribute.Int("contract.size", len(req.Data)),
	))
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := logging.FromContext(ctx, s.log).With(zap.String("filename", req.Filename), zap.Int("size", len(req.Data)))
	log.Info("pipeline.start")

	if len(req.Data) == 0 {
		res := s.failure(model.NewPipelineError(model.KindValidation, ErrEmptyFile.Error(), ErrEmptyFile), nil, 0)
		s.finish(ctx, span, log, req, res, storage.Artifact{}, start)
		return res
	}

	// Upload runs alongside text extraction and the model call.
	uploads := make(chan uploadResult, 1)
	if s.artifacts != nil {
		go func() {
			uctx, uspan := s.tracer.Start(ctx, "pipeline.upload")
			defer uspan.End()
			a, err := s.artifacts.Upload(uctx, req.Data, req.Filename)
			if err != nil {
				uspan.RecordError(err)
			}
			uploads <- uploadResult{artifact: a, err: err}
		}()
	} else {
		uploads <- uploadResult{}
	}

	data, attempts, perr := s.analyze(ctx, req, log)
	up := <-uploads

	var res *model.PipelineResult
	switch {
	case up.err != nil:
		log.Error("pipeline.upload_failed", zap.Error(up.err))
		serr := model.NewPipelineError(model.KindStorage, UserMessage(model.KindStorage, up.err), up.err)
		if perr != nil {
			res = s.failure(serr, nil, attempts)
		} else {
			res = s.failure(serr, &data, attempts)
		}
	case perr != nil:
		res = s.failure(perr, nil, attempts)
	default:
		rep := report.Build(data)
		res = &model.PipelineResult{
			Success:        true,
			URL:            up.artifact.URL,
			StructuredData: data,
			Report:         &rep,
			Attempts:       attempts,
		}
	}

	s.finish(ctx, span, log, req, res, up.artifact, start)
	return res
}

// analyze runs text extraction, the model call and JSON recovery, checking
// for cancellation between stages.
func (s *contractService) analyze(ctx context.Context, req model.UploadRequest, log *zap.Logger) (model.StructuredResult, int, *model.PipelineError) {
	if err := ctx.Err(); err != nil {
		return model.StructuredResult{}, 0, contextError(err)
	}

	tctx, tspan := s.tracer.Start(ctx, "pipeline.extract_text")
	text, err := s.extractor.ExtractText(tctx, req.Data)
	tspan.End()
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return model.StructuredResult{}, 0, contextError(cerr)
		}
		log.Error("pipeline.extract_text_failed", zap.Error(err))
		return model.StructuredResult{}, 0, model.NewPipelineError(model.KindParse, UserMessage(model.KindParse, err), err)
	}
	log.Info("pipeline.text_extracted", zap.Int("pages", text.Pages), zap.Int("chars", len(text.Content)))

	if err := ctx.Err(); err != nil {
		return model.StructuredResult{}, 0, contextError(err)
	}

	prompt := extraction.BuildPrompt(text.Content)

	mctx, mspan := s.tracer.Start(ctx, "pipeline.model")
	var response string
	call := 0
	attempts, err := s.retrier.Do(mctx, func(ctx context.Context) error {
		call++
		out, err := s.model.Complete(ctx, prompt)
		if err != nil {
			kind := llm.Classify(err)
			s.metrics.ModelAttempts.WithLabelValues(string(kind)).Inc()
			if kind.Retryable() {
				log.Warn("pipeline.model_retry", zap.Int("attempt", call), zap.String("error_kind", string(kind)), zap.Error(err))
			}
			return err
		}
		s.metrics.ModelAttempts.WithLabelValues("ok").Inc()
		response = out
		return nil
	})
	mspan.SetAttributes(attribute.Int("model.attempts", attempts))
	mspan.End()
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return model.StructuredResult{}, attempts, contextError(cerr)
		}
		kind := llm.Classify(err)
		log.Error("pipeline.model_failed", zap.Int("attempts", attempts), zap.String("error_kind", string(kind)), zap.Error(err))
		return model.StructuredResult{}, attempts, model.NewPipelineError(kind, UserMessage(kind, err), err)
	}

	if err := ctx.Err(); err != nil {
		return model.StructuredResult{}, attempts, contextError(err)
	}

	data, stage, warnings := extraction.FromResponse(response)
	s.metrics.JSONRecovery.WithLabelValues(string(stage)).Inc()
	if stage != extraction.StageDirect {
		log.Warn("pipeline.json_recovered", zap.String("stage", string(stage)), zap.Int("response_chars", len(response)))
	}
	if len(warnings) > 0 {
		log.Warn("pipeline.items_dropped", zap.Strings("warnings", warnings))
	}
	if err := extraction.Validate(data); err != nil {
		log.Warn("pipeline.schema_mismatch", zap.Error(err))
	}
	return data, attempts, nil
}

// failure builds a Failure result. partial, when non-nil, is model output that
// was recovered before a later stage failed.
func (s *contractService) failure(perr *model.PipelineError, partial *model.StructuredResult, attempts int) *model.PipelineResult {
	data := extraction.FailureResult(perr.Message)
	if partial != nil {
		data = *partial
	}
	return &model.PipelineResult{
		Success:        false,
		Error:          perr,
		StructuredData: data,
		Attempts:       attempts,
	}
}

// finish records metrics, history and the trace status for a completed invocation.
func (s *contractService) finish(ctx context.Context, span trace.Span, log *zap.Logger, req model.UploadRequest, res *model.PipelineResult, a storage.Artifact, start time.Time) {
	elapsed := s.now().Sub(start)
	outcome := "success"
	if res.Error != nil {
		outcome = string(res.Error.Kind)
		span.RecordError(res.Error)
		span.SetStatus(otelcodes.Error, string(res.Error.Kind))
	}
	s.metrics.Extractions.WithLabelValues(outcome).Inc()
	s.metrics.Duration.Observe(elapsed.Seconds())

	rec := &model.Extraction{
		Filename:    req.Filename,
		StoragePath: a.Key,
		Size:        req.Size,
		Success:     res.Success,
		Attempts:    res.Attempts,
		DurationMS:  elapsed.Milliseconds(),
		Result:      res.StructuredData,
		CreatedAt:   s.now().UTC(),
	}
	if rec.Size <= 0 {
		rec.Size = int64(len(req.Data))
	}
	if res.Error != nil {
		rec.ErrorKind = string(res.Error.Kind)
		rec.ErrorMessage = res.Error.Message
	}

	// History outlives the request budget; a slow or cancelled caller must not
	// lose the record.
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()
	stored, err := s.repo.Create(hctx, rec)
	if err != nil {
		log.Warn("pipeline.history_failed", zap.Error(err))
	} else if stored != nil {
		res.ExtractionID = stored.ID
	}

	fields := []zap.Field{
		zap.String("outcome", outcome),
		zap.Int("attempts", res.Attempts),
		zap.Int64("duration_ms", rec.DurationMS),
	}
	if res.ExtractionID != "" {
		fields = append(fields, zap.String("extraction_id", res.ExtractionID))
	}
	if res.Success {
		log.Info("pipeline.done", fields...)
	} else {
		log.Warn("pipeline.done", fields...)
	}
}

func contextError(err error) *model.PipelineError {
	msg := UserMessage(model.KindTimeout, err)
	if errors.Is(err, context.Canceled) {
		msg = "Processing was cancelled."
	}
	return model.NewPipelineError(model.KindTimeout, msg, err)
}

// List returns paginated history without exposing repository types.
func (s *contractService) List(ctx context.Context, limit, offset int) (*ExtractionListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ExtractionListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a history record by ID.
func (s *contractService) Get(ctx context.Context, id string) (*model.Extraction, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// FileURL re-signs the download URL of the stored contract.
func (s *contractService) FileURL(ctx context.Context, id string) (string, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.artifacts == nil || e.StoragePath == "" {
		return "", ErrNoArtifact
	}
	u, err := s.artifacts.URL(ctx, e.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return "", ErrNoArtifact
	}
	if err != nil {
		return "", fmt.Errorf("presign url: %w", err)
	}
	return u, nil
}

// Delete removes the stored contract, then deletes its record.
func (s *contractService) Delete(ctx context.Context, id string) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Delete from storage first; if this fails, keep the row so the object stays reachable.
	if s.artifacts != nil && e.StoragePath != "" {
		if err := s.artifacts.Delete(ctx, e.StoragePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			return fmt.Errorf("delete storage: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func validateID(id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
