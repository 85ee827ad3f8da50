package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"fairway/app/messaging"
	"fairway/app/metrics"
	"fairway/app/models"
	"fairway/app/providers/solapi"
	"fairway/app/repositories"
)

const logChannelSolapi = "solapi"

// SMSProvider delivers SMS, LMS and MMS messages in groups.
type SMSProvider interface {
	Configured() bool
	Sender() string
	SendMany(ctx context.Context, msgs []solapi.Message) (*solapi.SendResult, error)
}

// DispatchResult is the outcome for one channel post.
type DispatchResult struct {
	ID        int    `json:"id"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	SentCount int    `json:"sentCount"`
	FailCount int    `json:"failCount"`
	GroupID   string `json:"groupId,omitempty"`
}

// DispatchReport summarizes one run over the due drafts.
type DispatchReport struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Sent    int              `json:"sent"`
	DryRun  bool             `json:"dryRun,omitempty"`
	Results []DispatchResult `json:"results"`
}

// DispatchService sends scheduled SMS drafts
type DispatchService struct {
	channels  repositories.ChannelRepository
	customers repositories.CustomerRepository
	logs      repositories.MessageLogRepository
	sms       SMSProvider
	log       *zap.Logger
	now       Clock
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(repos repositories.Set, sms SMSProvider, log *zap.Logger) *DispatchService {
	return &DispatchService{
		channels:  repos.Channels,
		customers: repos.Customers,
		logs:      repos.Logs,
		sms:       sms,
		log:       log,
		now:       utcNow,
	}
}

// RunScheduled sends every SMS draft whose schedule has passed. A dry run
// walks the same path without calling the provider or writing anything.
func (s *DispatchService) RunScheduled(ctx context.Context, dryRun bool) (report *DispatchReport, err error) {
	start := time.Now()
	defer func() { metrics.RecordDispatch(err, time.Since(start)) }()

	if !dryRun && !s.sms.Configured() {
		return nil, notConfigured("SMS 서비스 설정이 완료되지 않았습니다.")
	}

	due, err := s.channels.ListDue(s.now())
	if err != nil {
		return nil, fmt.Errorf("예약 메시지 조회 실패: %w", err)
	}
	if len(due) == 0 {
		return &DispatchReport{
			Success: true,
			Message: "발송할 예약 메시지가 없습니다.",
			DryRun:  dryRun,
			Results: []DispatchResult{},
		}, nil
	}

	s.log.Info("dispatching scheduled messages", zap.Int("count", len(due)), zap.Bool("dry_run", dryRun))

	report = &DispatchReport{Success: true, DryRun: dryRun, Results: make([]DispatchResult, 0, len(due))}
	succeeded := 0
	for _, post := range due {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := s.deliver(ctx, post, dryRun)
		if res.Success {
			succeeded++
		}
		report.Sent += res.SentCount
		report.Results = append(report.Results, res)
	}
	report.Message = fmt.Sprintf("%d건 중 %d건 발송 완료", len(due), succeeded)
	return report, nil
}

// Send delivers one SMS post immediately, regardless of its schedule.
func (s *DispatchService) Send(ctx context.Context, id int, dryRun bool) (*DispatchResult, error) {
	if !dryRun && !s.sms.Configured() {
		return nil, notConfigured("SMS 서비스 설정이 완료되지 않았습니다.")
	}
	post, err := s.channels.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post.Channel != models.ChannelSMS {
		return nil, invalid("SMS 메시지가 아닙니다.")
	}
	res := s.deliver(ctx, post, dryRun)
	return &res, nil
}

// fail marks post failed with reason and reports it.
func (s *DispatchService) fail(post *models.ChannelPost, dryRun bool, reason string) DispatchResult {
	s.log.Warn("message not sent", zap.Int("id", post.ID), zap.String("reason", reason))
	if !dryRun {
		post.MarkFailed(s.now(), reason)
		if err := s.channels.Update(post); err != nil {
			s.log.Error("failed to update message status", zap.Int("id", post.ID), zap.Error(err))
		}
	}
	return DispatchResult{ID: post.ID, Message: reason}
}

// recipients narrows the post's numbers to mobiles that have not opted out
// and have not received this post yet. A non-empty reason means nothing is
// left to send.
func (s *DispatchService) recipients(post *models.ChannelPost) (candidates, pending []string, reason string) {
	if len(post.RecipientNumbers) == 0 {
		return nil, nil, "수신자 번호가 없습니다."
	}
	candidates = messaging.ValidMobiles(post.RecipientNumbers)
	if len(candidates) == 0 {
		return nil, nil, "유효한 수신자 번호가 없습니다."
	}

	if blocked, err := s.customers.OptedOut(candidates); err != nil {
		s.log.Error("opt-out lookup failed, continuing", zap.Int("id", post.ID), zap.Error(err))
	} else if len(blocked) > 0 {
		candidates = without(candidates, blocked)
	}
	if len(candidates) == 0 {
		return nil, nil, "수신거부 제외 후 발송 가능한 수신자가 없습니다."
	}

	pending = candidates
	if sent, err := s.logs.SentPhones(contentID(post.ID), candidates); err != nil {
		s.log.Error("duplicate check failed, continuing", zap.Int("id", post.ID), zap.Error(err))
	} else if len(sent) > 0 {
		pending = without(candidates, sent)
	}
	return candidates, pending, ""
}

func (s *DispatchService) deliver(ctx context.Context, post *models.ChannelPost, dryRun bool) DispatchResult {
	_, pending, reason := s.recipients(post)
	if reason != "" {
		return s.fail(post, dryRun, reason)
	}

	if len(pending) == 0 {
		if !dryRun {
			now := s.now()
			post.Status = models.StatusSent
			post.ScheduledAt = nil
			post.UpdatedAt = now
			if err := s.channels.Update(post); err != nil {
				s.log.Error("failed to update message status", zap.Int("id", post.ID), zap.Error(err))
			}
		}
		return DispatchResult{ID: post.ID, Success: true, Message: "이미 모든 대상에게 발송되었습니다."}
	}

	imageID := post.ImageID
	if imageID == "" && post.ImageURL != "" && !isHTTPURL(post.ImageURL) {
		imageID = post.ImageURL
	}
	msgType := messaging.ProviderType(post.MessageType, imageID != "")
	text := messaging.ComposeText(post.Content, post.ShortLink)

	msgs := make([]solapi.Message, 0, len(pending))
	for _, to := range pending {
		m := solapi.Message{To: to, From: s.sms.Sender(), Text: text, Type: msgType}
		if msgType == solapi.TypeMMS {
			m.ImageID = imageID
		}
		if msgType != solapi.TypeSMS && post.Title != "" {
			m.Subject = post.Title
		}
		msgs = append(msgs, m)
	}

	agg := s.sendChunks(ctx, post.ID, msgs, dryRun)
	groupID := strings.Join(agg.groupIDs, ",")

	if !dryRun {
		now := s.now()
		s.writeLogs(post.ID, msgType, agg.results, now)

		post.RecordDelivery(len(pending), agg.success, agg.fail, groupID, now)
		if err := s.channels.Update(post); err != nil {
			s.log.Error("failed to update message status", zap.Int("id", post.ID), zap.Error(err))
		}
		metrics.RecordMessages(models.ChannelSMS, agg.success, agg.fail)
	}

	s.log.Info("message dispatched",
		zap.Int("id", post.ID),
		zap.Int("success", agg.success),
		zap.Int("fail", agg.fail),
		zap.String("group_id", groupID),
		zap.Bool("dry_run", dryRun))

	return DispatchResult{
		ID:        post.ID,
		Success:   agg.success > 0,
		SentCount: agg.success,
		FailCount: agg.fail,
		GroupID:   groupID,
	}
}

type aggregate struct {
	groupIDs []string
	results  []solapi.Result
	success  int
	fail     int
}

// sendChunks submits msgs in groups of solapi.ChunkSize. A failed chunk
// counts every message in it as failed.
func (s *DispatchService) sendChunks(ctx context.Context, postID int, msgs []solapi.Message, dryRun bool) aggregate {
	var agg aggregate
	for i, chunk := 0, 1; i < len(msgs); i, chunk = i+solapi.ChunkSize, chunk+1 {
		end := i + solapi.ChunkSize
		if end > len(msgs) {
			end = len(msgs)
		}
		batch := msgs[i:end]

		if dryRun {
			agg.groupIDs = append(agg.groupIDs, fmt.Sprintf("DRY-RUN-GROUP-%d-%d", postID, chunk))
			for _, m := range batch {
				agg.results = append(agg.results, solapi.Result{To: m.To, Status: "success", StatusCode: solapi.StatusCodeAccepted})
			}
			agg.success += len(batch)
			continue
		}

		res, err := s.sms.SendMany(ctx, batch)
		if err != nil {
			s.log.Error("chunk send failed", zap.Int("id", postID), zap.Int("chunk", chunk), zap.Error(err))
			agg.fail += len(batch)
			for _, m := range batch {
				agg.results = append(agg.results, solapi.Result{
					To:           m.To,
					Status:       "failed",
					ErrorCode:    "NETWORK_ERROR",
					ErrorMessage: err.Error(),
				})
			}
			continue
		}

		if res.GroupID != "" {
			agg.groupIDs = append(agg.groupIDs, res.GroupID)
		}
		if res.Results == nil {
			agg.success += len(batch)
			for _, m := range batch {
				agg.results = append(agg.results, solapi.Result{To: m.To})
			}
			continue
		}
		for j, r := range res.Results {
			if r.To == "" && j < len(batch) {
				r.To = batch[j].To
			}
			if r.Success() {
				agg.success++
			} else {
				agg.fail++
			}
			agg.results = append(agg.results, r)
		}
	}
	return agg
}

func (s *DispatchService) writeLogs(postID int, msgType string, results []solapi.Result, at time.Time) {
	for _, r := range results {
		phone := messaging.NormalizePhone(r.To)
		if phone == "" {
			continue
		}
		status := r.Status
		if status == "" {
			status = models.StatusSent
		}
		entry := &models.MessageLog{
			ContentID:     contentID(postID),
			CustomerPhone: phone,
			MessageType:   strings.ToLower(msgType),
			Status:        status,
			Channel:       logChannelSolapi,
			SentAt:        at,
		}
		if err := s.logs.Upsert(entry); err != nil {
			s.log.Error("failed to write message log", zap.Int("id", postID), zap.String("phone", phone), zap.Error(err))
		}
	}
}

func contentID(postID int) string {
	return fmt.Sprint(postID)
}

func without(list []string, drop map[string]bool) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if !drop[v] {
			out = append(out, v)
		}
	}
	return out
}

func isHTTPURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
