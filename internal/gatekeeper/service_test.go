package gatekeeper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"alumni-check/internal/claim"
	"alumni-check/internal/config"
	"alumni-check/internal/intake"
	"alumni-check/internal/moderation"
	"alumni-check/internal/roster"
	"alumni-check/internal/whitelist"
)

const testAdminID = int64(999)

type stubMatcher struct {
	rec     roster.Record
	ok      bool
	err     error
	matched []claim.Claim
}

func (m *stubMatcher) Match(ctx context.Context, c claim.Claim) (roster.Record, bool, error) {
	m.matched = append(m.matched, c)
	return m.rec, m.ok, m.err
}

type stubRoster struct {
	enrolled []string
}

func (r *stubRoster) FindCandidates(ctx context.Context, year, klass int) ([]roster.Record, error) {
	return nil, nil
}

func (r *stubRoster) RecordEnrollment(ctx context.Context, rec roster.Record, handle string, when time.Time) error {
	r.enrolled = append(r.enrolled, handle)
	return nil
}

func newTestService(m Matcher, policy config.EmptyBioPolicy) (*Service, *stubRoster) {
	repo := &stubRoster{}
	svc := New(
		m,
		repo,
		intake.NewManager(intake.NewMemoryStore()),
		whitelist.NewMemoryStore(),
		moderation.NewDefault(),
		nil,
		testAdminID,
		"admin",
		policy,
	)
	return svc, repo
}

func kinds(acts []Action) []ActionKind {
	out := make([]ActionKind, 0, len(acts))
	for _, a := range acts {
		out = append(out, a.Kind)
	}
	return out
}

func hasKind(acts []Action, k ActionKind) bool {
	for _, a := range acts {
		if a.Kind == k {
			return true
		}
	}
	return false
}

func userMessages(acts []Action, userID int64) []string {
	var out []string
	for _, a := range acts {
		if a.Kind == ActionSendMessage && a.ChatID == userID {
			out = append(out, a.Text)
		}
	}
	return out
}

func joinReq(userID int64, bio string) JoinRequest {
	return JoinRequest{
		Profile: Profile{UserID: userID, Username: "user", FirstName: "Вася"},
		ChatID:  -100,
		Bio:     bio,
	}
}

func TestJoinRequestMatchedBioApproves(t *testing.T) {
	m := &stubMatcher{rec: roster.Record{FullName: "Sergey Fedorov", Year: 2010, Klass: 2}, ok: true}
	svc, repo := newTestService(m, config.PolicyInstruct)

	acts := svc.OnJoinRequest(context.Background(), joinReq(1, "Fedorov Sergey 2010 2"))
	if !hasKind(acts, ActionApproveJoin) {
		t.Fatalf("no approval in %v", kinds(acts))
	}
	if hasKind(acts, ActionDeclineJoin) {
		t.Fatalf("approved and declined at once: %v", kinds(acts))
	}
	if len(repo.enrolled) != 1 {
		t.Fatalf("enrollment not recorded: %v", repo.enrolled)
	}
	msgs := userMessages(acts, 1)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "Рады знакомству") {
		t.Fatalf("success message missing: %v", msgs)
	}
}

func TestJoinRequestUnmatchedBioDeclines(t *testing.T) {
	m := &stubMatcher{ok: false}
	svc, _ := newTestService(m, config.PolicyInstruct)

	acts := svc.OnJoinRequest(context.Background(), joinReq(1, "Ivan Petrov 1999 5"))
	if !hasKind(acts, ActionDeclineJoin) || hasKind(acts, ActionApproveJoin) {
		t.Fatalf("want decline, got %v", kinds(acts))
	}
	msgs := userMessages(acts, 1)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "не нашли тебя в базе") {
		t.Fatalf("not-found message missing: %v", msgs)
	}
	if len(msgs) == 1 {
		// the escalation button must be attached
		for _, a := range acts {
			if a.ChatID == 1 && a.Kind == ActionSendMessage && len(a.Buttons) == 0 {
				t.Fatal("not-found message has no escalation button")
			}
		}
	}
}

func TestJoinRequestIncompleteBioDeclines(t *testing.T) {
	m := &stubMatcher{ok: true}
	svc, _ := newTestService(m, config.PolicyInstruct)

	acts := svc.OnJoinRequest(context.Background(), joinReq(1, "выпускник, люблю школу"))
	if !hasKind(acts, ActionDeclineJoin) {
		t.Fatalf("want decline, got %v", kinds(acts))
	}
	if len(m.matched) != 0 {
		t.Fatal("matcher consulted for unparsable bio")
	}
}

func TestJoinRequestNoBioPolicies(t *testing.T) {
	m := &stubMatcher{}
	svc, _ := newTestService(m, config.PolicyInstruct)
	acts := svc.OnJoinRequest(context.Background(), joinReq(1, ""))
	if !hasKind(acts, ActionDeclineJoin) {
		t.Fatalf("instruct policy must decline: %v", kinds(acts))
	}
	if len(userMessages(acts, 1)) != 1 {
		t.Fatal("instruct policy must message the user")
	}

	svc, _ = newTestService(m, config.PolicySilent)
	acts = svc.OnJoinRequest(context.Background(), joinReq(1, ""))
	if hasKind(acts, ActionDeclineJoin) || len(userMessages(acts, 1)) != 0 {
		t.Fatalf("silent policy must do nothing user-visible: %v", kinds(acts))
	}
}

func TestJoinRequestStoreErrorNeverApproves(t *testing.T) {
	m := &stubMatcher{err: errors.New("connection refused")}
	svc, _ := newTestService(m, config.PolicyInstruct)

	acts := svc.OnJoinRequest(context.Background(), joinReq(1, "Fedorov Sergey 2010 2"))
	if hasKind(acts, ActionApproveJoin) || hasKind(acts, ActionDeclineJoin) {
		t.Fatalf("store error must leave the request pending: %v", kinds(acts))
	}
	msgs := userMessages(acts, 1)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "попробуй позже") {
		t.Fatalf("retry message missing: %v", msgs)
	}
}

func TestVerifyThenJoinConsumesWhitelistOnce(t *testing.T) {
	m := &stubMatcher{rec: roster.Record{FullName: "Sergey Fedorov", Year: 2010, Klass: 2}, ok: true}
	svc, _ := newTestService(m, config.PolicyInstruct)
	ctx := context.Background()
	p := Profile{UserID: 5, Username: "sergey"}

	// DM verification puts the user on the whitelist
	acts := svc.OnDirectMessage(ctx, p, "Fedorov Sergey 2010 2")
	if msgs := userMessages(acts, 5); len(msgs) != 1 || !strings.Contains(msgs[0], "Рады знакомству") {
		t.Fatalf("DM verification failed: %v", msgs)
	}

	// join request with no bio: auto-approved from the whitelist
	acts = svc.OnJoinRequest(ctx, joinReq(5, ""))
	if !hasKind(acts, ActionApproveJoin) {
		t.Fatalf("whitelisted user not approved: %v", kinds(acts))
	}

	// a second identical request: whitelist entry already consumed
	acts = svc.OnJoinRequest(ctx, joinReq(5, ""))
	if hasKind(acts, ActionApproveJoin) {
		t.Fatal("whitelist entry consumed twice")
	}
	if !hasKind(acts, ActionDeclineJoin) {
		t.Fatalf("second request must fall through to bio handling: %v", kinds(acts))
	}
}

func TestIntakeFlowEndToEnd(t *testing.T) {
	m := &stubMatcher{rec: roster.Record{FullName: "Иванов Иван", Year: 2015, Klass: 3}, ok: true}
	svc, _ := newTestService(m, config.PolicyInstruct)
	ctx := context.Background()
	p := Profile{UserID: 7, Username: "ivan"}

	acts := svc.OnDirectMessage(ctx, p, "/start")
	if msgs := userMessages(acts, 7); len(msgs) != 1 || !strings.Contains(msgs[0], "фамилию и имя") {
		t.Fatalf("greeting missing: %v", msgs)
	}
	svc.OnDirectMessage(ctx, p, "Иванов Иван")
	svc.OnDirectMessage(ctx, p, "2015")
	svc.OnDirectMessage(ctx, p, "3")
	acts = svc.OnDirectMessage(ctx, p, "Мария Петровна")

	if msgs := userMessages(acts, 7); len(msgs) != 1 || !strings.Contains(msgs[0], "Рады знакомству") {
		t.Fatalf("final verification failed: %v", msgs)
	}
	if len(m.matched) != 1 {
		t.Fatalf("matcher calls = %d, want 1", len(m.matched))
	}
	want := claim.Claim{FullName: "Иванов Иван", Year: 2015, Klass: 3}
	if m.matched[0] != want {
		t.Fatalf("collected claim %+v, want %+v", m.matched[0], want)
	}

	// join request right after: approved from the whitelist
	acts = svc.OnJoinRequest(ctx, joinReq(7, ""))
	if !hasKind(acts, ActionApproveJoin) {
		t.Fatalf("verified user not approved: %v", kinds(acts))
	}
}

func TestCancelMakesNextMessageStateless(t *testing.T) {
	m := &stubMatcher{}
	svc, _ := newTestService(m, config.PolicyInstruct)
	ctx := context.Background()
	p := Profile{UserID: 8}

	svc.OnDirectMessage(ctx, p, "/start")
	acts := svc.OnDirectMessage(ctx, p, "/cancel")
	if msgs := userMessages(acts, 8); len(msgs) != 1 || !strings.Contains(msgs[0], "отменен") {
		t.Fatalf("cancel ack missing: %v", msgs)
	}

	// after cancel this is not an intake answer anymore
	acts = svc.OnDirectMessage(ctx, p, "ничего не понимаю")
	if msgs := userMessages(acts, 8); len(msgs) != 1 || !strings.Contains(msgs[0], "не понял") {
		t.Fatalf("message after cancel not stateless: %v", msgs)
	}
}

func TestTwoWordNameStartsIntake(t *testing.T) {
	m := &stubMatcher{}
	svc, _ := newTestService(m, config.PolicyInstruct)

	acts := svc.OnDirectMessage(context.Background(), Profile{UserID: 9}, "Иванов Иван")
	if msgs := userMessages(acts, 9); len(msgs) != 1 || !strings.Contains(msgs[0], "фамилию и имя") {
		t.Fatalf("two-word name should start the guided flow: %v", msgs)
	}
}

func TestIncompleteClaimGetsFormatHelp(t *testing.T) {
	m := &stubMatcher{}
	svc, _ := newTestService(m, config.PolicyInstruct)
	ctx := context.Background()

	// digits present: a failed claim attempt, answered with the format help
	acts := svc.OnDirectMessage(ctx, Profile{UserID: 14}, "Федоров 2010")
	if msgs := userMessages(acts, 14); len(msgs) != 1 || !strings.Contains(msgs[0], "Неполные данные") {
		t.Fatalf("format help missing: %v", msgs)
	}

	// no digits: generic instruction
	acts = svc.OnDirectMessage(ctx, Profile{UserID: 14}, "привет, как дела?")
	if msgs := userMessages(acts, 14); len(msgs) != 1 || !strings.Contains(msgs[0], "не понял") {
		t.Fatalf("instruction missing: %v", msgs)
	}
	if len(m.matched) != 0 {
		t.Fatal("matcher consulted for incomplete input")
	}
}

func TestForbiddenProfileRejected(t *testing.T) {
	m := &stubMatcher{ok: true}
	svc, _ := newTestService(m, config.PolicyInstruct)

	p := Profile{UserID: 10, FirstName: "дурак"}
	acts := svc.OnDirectMessage(context.Background(), p, "Fedorov Sergey 2010 2")
	if len(m.matched) != 0 {
		t.Fatal("verification ran for a flagged profile")
	}
	if msgs := userMessages(acts, 10); len(msgs) != 1 || !strings.Contains(msgs[0], "некорректные слова") {
		t.Fatalf("rejection message missing: %v", msgs)
	}
}

func TestCallbackEscalation(t *testing.T) {
	m := &stubMatcher{}
	svc, _ := newTestService(m, config.PolicyInstruct)

	c := claim.Claim{FullName: "Ivan Petrov", Year: 1999, Klass: 5}
	data := helpCallbackData(11, c, "Мария Петровна")
	acts := svc.OnCallback(context.Background(), Profile{UserID: 11, Username: "ivan"}, data)

	if msgs := userMessages(acts, 11); len(msgs) != 1 || !strings.Contains(msgs[0], "свяжется") {
		t.Fatalf("user ack missing: %v", msgs)
	}
	admin := userMessages(acts, testAdminID)
	if len(admin) != 1 || !strings.Contains(admin[0], "Ivan Petrov") || !strings.Contains(admin[0], "Мария Петровна") {
		t.Fatalf("admin escalation missing data: %v", admin)
	}

	if acts := svc.OnCallback(context.Background(), Profile{UserID: 11}, "something_else"); acts != nil {
		t.Fatalf("unknown callback produced actions: %v", acts)
	}
}

func TestAdminStartGreeting(t *testing.T) {
	m := &stubMatcher{}
	svc, _ := newTestService(m, config.PolicyInstruct)

	acts := svc.OnDirectMessage(context.Background(), Profile{UserID: testAdminID}, "/start")
	if msgs := userMessages(acts, testAdminID); len(msgs) != 1 || !strings.Contains(msgs[0], "проверяю заявки") {
		t.Fatalf("admin greeting missing: %v", msgs)
	}
}

func TestSweepClearsStaleState(t *testing.T) {
	m := &stubMatcher{rec: roster.Record{FullName: "Sergey Fedorov"}, ok: true}
	svc, _ := newTestService(m, config.PolicyInstruct)
	ctx := context.Background()

	svc.OnDirectMessage(ctx, Profile{UserID: 12}, "Fedorov Sergey 2010 2")
	svc.OnDirectMessage(ctx, Profile{UserID: 13}, "/start")

	sessions, verified := svc.Sweep(0, 0)
	if sessions != 1 || verified != 1 {
		t.Fatalf("swept sessions=%d verified=%d, want 1/1", sessions, verified)
	}
}
