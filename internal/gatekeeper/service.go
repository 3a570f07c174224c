package gatekeeper

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
	"unicode"

	"alumni-check/internal/claim"
	"alumni-check/internal/config"
	"alumni-check/internal/intake"
	"alumni-check/internal/moderation"
	"alumni-check/internal/roster"
	"alumni-check/internal/storage"
	"alumni-check/internal/whitelist"
)

const startCommand = "/start"

// Matcher is the acceptance oracle the service consults.
type Matcher interface {
	Match(ctx context.Context, c claim.Claim) (roster.Record, bool, error)
}

// Service is the verification core. It consumes transport events and
// returns the actions to perform, keeping the transport a thin executor.
// Per-user state (intake sessions, the verified set) is guarded by one
// service-wide mutex; expected load is a handful of events per day.
type Service struct {
	mu sync.Mutex

	matcher    Matcher
	rosterRepo roster.Repository
	sessions   *intake.Manager
	verified   whitelist.Store
	filter     *moderation.Filter
	recorder   storage.Recorder

	adminUserID    int64
	adminUsername  string
	emptyBioPolicy config.EmptyBioPolicy
}

func New(
	matcher Matcher,
	rosterRepo roster.Repository,
	sessions *intake.Manager,
	verified whitelist.Store,
	filter *moderation.Filter,
	recorder storage.Recorder,
	adminUserID int64,
	adminUsername string,
	emptyBioPolicy config.EmptyBioPolicy,
) *Service {
	return &Service{
		matcher:        matcher,
		rosterRepo:     rosterRepo,
		sessions:       sessions,
		verified:       verified,
		filter:         filter,
		recorder:       recorder,
		adminUserID:    adminUserID,
		adminUsername:  adminUsername,
		emptyBioPolicy: emptyBioPolicy,
	}
}

// OnJoinRequest reconciles one join request. Decision order: whitelist,
// bio presence, bio parse, roster match.
func (s *Service) OnJoinRequest(ctx context.Context, req JoinRequest) []Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("Processing join request from user %d in chat %d", req.UserID, req.ChatID)

	forbidden := s.filter.CheckProfile(req.FirstName, req.LastName, req.Username)
	if len(forbidden) > 0 {
		log.Printf("Found forbidden words in user %d profile: %v", req.UserID, forbidden)
	}
	acts := s.adminNotice(newRequestNotice(req, forbidden))

	// Whitelist: identity already confirmed over direct messages. The
	// entry is consumed here, once; a later identical request falls
	// through to bio-based handling.
	if existed, err := s.verified.Remove(req.UserID); err == nil && existed {
		log.Printf("User %d is verified, approving", req.UserID)
		acts = append(acts, approveJoin(req.ChatID, req.UserID))
		s.record(storage.Event{UserID: req.UserID, Username: req.Username, Outcome: storage.OutcomeJoinApproved})
		return acts
	} else if err != nil {
		log.Printf("whitelist lookup failed for %d: %v", req.UserID, err)
	}

	if strings.TrimSpace(req.Bio) == "" {
		log.Printf("Join request from %d has no bio, policy=%s", req.UserID, s.emptyBioPolicy)
		s.record(storage.Event{UserID: req.UserID, Username: req.Username, Outcome: storage.OutcomeJoinDeclinedNoBio})
		if s.emptyBioPolicy == config.PolicySilent {
			return acts
		}
		acts = append(acts, declineJoin(req.ChatID, req.UserID))
		acts = append(acts, sendTo(req.UserID, msgDeclinedNoBio))
		return acts
	}

	c, ok := claim.Parse(req.Bio)
	if !ok {
		log.Printf("Declining request from %d: incomplete data in bio", req.UserID)
		acts = append(acts, declineJoin(req.ChatID, req.UserID))
		acts = append(acts, sendTo(req.UserID, msgDeclinedIncompleteBio))
		s.record(storage.Event{UserID: req.UserID, Username: req.Username, Outcome: storage.OutcomeJoinDeclinedIncomplete})
		return acts
	}

	rec, matched, err := s.matcher.Match(ctx, c)
	if err != nil {
		// Store failure: never approve, never decline; the user can
		// retry once the roster is reachable again.
		log.Printf("❌ roster check failed for %d: %v", req.UserID, err)
		acts = append(acts, sendTo(req.UserID, storeErrorMessage(s.adminUsername)))
		return acts
	}
	if !matched {
		log.Printf("Declining request from %d: user not found", req.UserID)
		acts = append(acts, declineJoin(req.ChatID, req.UserID))
		acts = append(acts, s.notFoundActions(req.Profile, c, "")...)
		s.record(storage.Event{
			UserID: req.UserID, Username: req.Username,
			Outcome: storage.OutcomeJoinDeclinedNotFound,
			FullName: c.FullName, Year: c.Year, Klass: c.Klass,
		})
		return acts
	}

	log.Printf("Approving request from %d - user found in database", req.UserID)
	acts = append(acts, approveJoin(req.ChatID, req.UserID))
	s.recordEnrollment(ctx, rec, req.Profile)
	acts = append(acts, s.successActions(req.Profile, c, "")...)
	s.record(storage.Event{
		UserID: req.UserID, Username: req.Username,
		Outcome:  storage.OutcomeJoinApproved,
		FullName: c.FullName, Year: c.Year, Klass: c.Klass,
	})
	return acts
}

// OnDirectMessage handles one private message: the step-by-step flow if
// the user is mid-intake, otherwise commands and free-text claims.
func (s *Service) OnDirectMessage(ctx context.Context, p Profile, text string) []Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(text)

	if p.UserID == s.adminUserID && s.adminUserID != 0 && strings.EqualFold(trimmed, startCommand) {
		return []Action{sendTo(p.UserID, msgAdminGreeting)}
	}

	if found := s.filter.CheckProfile(p.FirstName, p.LastName, p.Username); len(found) > 0 {
		log.Printf("Rejecting message from %d: forbidden words in profile - %v", p.UserID, found)
		s.sessions.Cancel(p.UserID)
		return []Action{sendTo(p.UserID, forbiddenProfileMessage(found))}
	}

	if s.sessions.Active(p.UserID) {
		return s.handleIntakeTurn(ctx, p, text)
	}

	if strings.EqualFold(trimmed, startCommand) {
		return []Action{sendTo(p.UserID, s.sessions.Start(p.UserID))}
	}

	// A bare "Фамилия Имя" means the user needs the guided flow.
	if isTwoAlphaWords(trimmed) {
		return []Action{sendTo(p.UserID, s.sessions.Start(p.UserID))}
	}

	c, ok := claim.Parse(text)
	if !ok {
		// Digits in the message mean the user tried to send a claim and
		// got the format wrong; show the full format help.
		if strings.ContainsAny(trimmed, "0123456789") {
			return []Action{sendTo(p.UserID, msgIncompleteData)}
		}
		return []Action{sendTo(p.UserID, msgInstruction)}
	}
	return s.verifyFromDM(ctx, p, c, "")
}

// OnCallback handles inline button presses; the only payload today is
// the "contact admin" escalation from the not-found message.
func (s *Service) OnCallback(ctx context.Context, p Profile, data string) []Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, c, teacher, ok := parseHelpCallback(data)
	if !ok {
		return nil
	}
	acts := []Action{sendTo(p.UserID, msgEscalationAck)}
	acts = append(acts, s.adminNotice(escalationNotice(p, c, teacher))...)
	s.record(storage.Event{
		UserID: p.UserID, Username: p.Username,
		Outcome:  storage.OutcomeEscalated,
		FullName: c.FullName, Year: c.Year, Klass: c.Klass, Teacher: teacher,
	})
	return acts
}

// Sweep drops stale per-user state; wired to the scheduler.
func (s *Service) Sweep(sessionTTL, whitelistTTL time.Duration) (sessions, verified int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sw, ok := s.sessionSweeper(); ok {
		sessions = sw.Sweep(sessionTTL)
	}
	verified = s.verified.Sweep(whitelistTTL)
	return sessions, verified
}

func (s *Service) handleIntakeTurn(ctx context.Context, p Profile, text string) []Action {
	res := s.sessions.Handle(p.UserID, text)
	switch res.Kind {
	case intake.ResultPrompt, intake.ResultCancelled:
		return []Action{sendTo(p.UserID, res.Prompt)}
	case intake.ResultCompleted:
		return s.verifyFromDM(ctx, p, res.Claim, res.Teacher)
	default:
		// Session vanished mid-turn; treat the message as stateless.
		return []Action{sendTo(p.UserID, msgInstruction)}
	}
}

// verifyFromDM runs the roster check for a claim submitted over direct
// messages and, on success, puts the user on the whitelist for the next
// join request.
func (s *Service) verifyFromDM(ctx context.Context, p Profile, c claim.Claim, teacher string) []Action {
	rec, matched, err := s.matcher.Match(ctx, c)
	if err != nil {
		log.Printf("❌ roster check failed for %d: %v", p.UserID, err)
		return []Action{sendTo(p.UserID, storeErrorMessage(s.adminUsername))}
	}
	if !matched {
		acts := s.notFoundActions(p, c, teacher)
		s.record(storage.Event{
			UserID: p.UserID, Username: p.Username,
			Outcome:  storage.OutcomeNotFoundDM,
			FullName: c.FullName, Year: c.Year, Klass: c.Klass, Teacher: teacher,
		})
		return acts
	}

	if err := s.verified.Add(p.UserID); err != nil {
		log.Printf("whitelist add failed for %d: %v", p.UserID, err)
	}
	s.recordEnrollment(ctx, rec, p)
	acts := s.successActions(p, c, teacher)
	s.record(storage.Event{
		UserID: p.UserID, Username: p.Username,
		Outcome:  storage.OutcomeVerifiedDM,
		FullName: c.FullName, Year: c.Year, Klass: c.Klass, Teacher: teacher,
	})
	return acts
}

func (s *Service) successActions(p Profile, c claim.Claim, teacher string) []Action {
	acts := []Action{{
		Kind:      ActionSendMessage,
		ChatID:    p.UserID,
		Text:      successMessage(s.adminUsername),
		ParseMode: "HTML",
	}}
	return append(acts, s.adminNotice(positiveNotice(p, c, teacher))...)
}

func (s *Service) notFoundActions(p Profile, c claim.Claim, teacher string) []Action {
	acts := []Action{{
		Kind:    ActionSendMessage,
		ChatID:  p.UserID,
		Text:    notFoundMessage(c),
		Buttons: []Button{{Label: "Связаться с админом", Data: helpCallbackData(p.UserID, c, teacher)}},
	}}
	return append(acts, s.adminNotice(negativeNotice(p, c, teacher))...)
}

// recordEnrollment is a best-effort side effect: a write-back failure is
// logged but never blocks an approval already decided.
func (s *Service) recordEnrollment(ctx context.Context, rec roster.Record, p Profile) {
	if s.rosterRepo == nil {
		return
	}
	handle := p.Username
	if handle == "" {
		handle = displayName(p)
	}
	if err := s.rosterRepo.RecordEnrollment(ctx, rec, handle, time.Now().UTC()); err != nil {
		log.Printf("❌ enrollment write-back failed for %q: %v", rec.FullName, err)
	}
}

func (s *Service) adminNotice(text string) []Action {
	if s.adminUserID == 0 {
		return nil
	}
	return []Action{sendTo(s.adminUserID, text)}
}

func (s *Service) record(ev storage.Event) {
	if s.recorder == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	if err := s.recorder.AppendOutcome(ev); err != nil {
		log.Printf("failed to record outcome: %v", err)
	}
}

func (s *Service) sessionSweeper() (interface{ Sweep(time.Duration) int }, bool) {
	sw, ok := s.sessions.Store().(interface{ Sweep(time.Duration) int })
	return sw, ok
}

func isTwoAlphaWords(text string) bool {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return false
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}
