package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/slofy/reviewmate/internal/dispatch"
	"github.com/slofy/reviewmate/internal/metrics"
	"github.com/slofy/reviewmate/internal/model"
	"github.com/slofy/reviewmate/internal/upstream"
)

type ReviewUpstream interface {
	Review(ctx context.Context, req model.ReviewRequest) (*upstream.Result, error)
}

type SourceControl interface {
	Commit(ctx context.Context, req model.CommitRequest) (*model.CommitResult, error)
	OpenPullRequest(ctx context.Context, req model.PullRequestRequest) (*model.PullRequestResult, error)
}

type Notifier interface {
	SendEmail(ctx context.Context, to, subject, message string) error
}

type Ledger interface {
	Deduct(ctx context.Context, email string, amount int) (int, error)
}

type Authenticator interface {
	Signup(ctx context.Context, name, email, password string) (*model.Account, string, error)
	Login(ctx context.Context, email, password string) (*model.Account, string, error)
}

// Orchestrator sequences a billable action and its side effects. The primary
// action's result is authoritative; billing and notification run detached
// from the response path and their failures never alter what the client sees.
type Orchestrator struct {
	review   ReviewUpstream
	source   SourceControl
	notifier Notifier
	ledger   Ledger
	auth     Authenticator
	tasks    *dispatch.Dispatcher
}

func NewOrchestrator(
	review ReviewUpstream,
	source SourceControl,
	notifier Notifier,
	ledger Ledger,
	auth Authenticator,
	tasks *dispatch.Dispatcher,
) *Orchestrator {
	return &Orchestrator{
		review:   review,
		source:   source,
		notifier: notifier,
		ledger:   ledger,
		auth:     auth,
		tasks:    tasks,
	}
}

// Review relays a code review request. The upstream status and body are
// passed through untouched; the tariff is charged only when the upstream
// reported success and the request carried an account email.
func (o *Orchestrator) Review(ctx context.Context, req model.ReviewRequest) (*upstream.Result, error) {
	res, err := o.review.Review(ctx, req)
	if err != nil {
		metrics.ActionsTotal.WithLabelValues(string(model.ActionReview), "unavailable").Inc()
		return nil, err
	}

	if res.OK() {
		metrics.ActionsTotal.WithLabelValues(string(model.ActionReview), "success").Inc()
		if req.Email != "" {
			o.charge(model.ActionReview, req.Email)
			o.notify(string(model.ActionReview), req.Email,
				"AI Review Complete",
				"Your code review has finished. Open Slofy to see the suggestions.")
		}
	} else {
		metrics.ActionsTotal.WithLabelValues(string(model.ActionReview), "failed").Inc()
	}

	return res, nil
}

// Commit pushes files through the source-control client, then bills and
// notifies on success.
func (o *Orchestrator) Commit(ctx context.Context, req model.CommitRequest) (*model.CommitResult, error) {
	res, err := o.source.Commit(ctx, req)
	if err != nil {
		metrics.ActionsTotal.WithLabelValues(string(model.ActionCommit), "unavailable").Inc()
		return nil, err
	}

	metrics.ActionsTotal.WithLabelValues(string(model.ActionCommit), "success").Inc()
	if req.Email != "" {
		o.charge(model.ActionCommit, req.Email)
		o.notify(string(model.ActionCommit), req.Email,
			"Commit Successful",
			fmt.Sprintf("Your changes were committed to <b>%s/%s</b> on branch <b>%s</b>.",
				req.Owner, req.Repo, res.Branch))
	}

	return res, nil
}

// PullRequest opens (or rediscovers) a pull request. The upstream's
// created/exists distinction is surfaced unchanged. A rediscovered PR is
// still billed: any 2xx from the upstream counts as a completed action.
func (o *Orchestrator) PullRequest(ctx context.Context, req model.PullRequestRequest) (*model.PullRequestResult, error) {
	res, err := o.source.OpenPullRequest(ctx, req)
	if err != nil {
		metrics.ActionsTotal.WithLabelValues(string(model.ActionPullRequest), "unavailable").Inc()
		return nil, err
	}

	metrics.ActionsTotal.WithLabelValues(string(model.ActionPullRequest), "success").Inc()
	if req.Email != "" {
		o.charge(model.ActionPullRequest, req.Email)
		o.notify(string(model.ActionPullRequest), req.Email,
			"Pull Request Created",
			fmt.Sprintf(`A pull request is open for <b>%s/%s</b><br>Branch: <b>%s</b><br><a href="%s">View PR</a>`,
				req.Owner, req.Repo, req.Branch, res.URL))
	}

	return res, nil
}

// Signup creates the account and sends a welcome email. Email dispatch
// failure never fails the signup response; no credits are charged.
func (o *Orchestrator) Signup(ctx context.Context, name, email, password string) (*model.Account, string, error) {
	account, token, err := o.auth.Signup(ctx, name, email, password)
	if err != nil {
		return nil, "", err
	}

	o.notify("signup", account.Email,
		"Welcome to Slofy!",
		fmt.Sprintf("<h2>Hey %s, welcome aboard</h2><p>Your Slofy account was created successfully.</p><p>You have <b>%d</b> credits ready to use.</p>",
			account.Name, account.Credits))

	return account, token, nil
}

// Login authenticates and sends a login alert, best effort.
func (o *Orchestrator) Login(ctx context.Context, email, password string) (*model.Account, string, error) {
	account, token, err := o.auth.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	o.notify("login", account.Email,
		"New Login Detected",
		fmt.Sprintf("<p>Hello %s,</p><p>You just signed in to your Slofy account.</p><p>If this wasn't you, please reset your password immediately.</p><p>Login time: %s</p>",
			account.Name, time.Now().Format(time.RFC1123)))

	return account, token, nil
}

func (o *Orchestrator) charge(kind model.ActionKind, email string) {
	amount := kind.Tariff()
	o.tasks.Go("deduct:"+string(kind), func(ctx context.Context) error {
		if _, err := o.ledger.Deduct(ctx, email, amount); err != nil {
			metrics.SideEffectFailures.WithLabelValues(string(kind), "deduct").Inc()
			return fmt.Errorf("deduct %d credits from %s after %s: %w", amount, email, kind, err)
		}
		metrics.CreditsDeducted.Add(float64(amount))
		return nil
	})
}

func (o *Orchestrator) notify(kind, email, subject, message string) {
	o.tasks.Go("notify:"+kind, func(ctx context.Context) error {
		if err := o.notifier.SendEmail(ctx, email, subject, message); err != nil {
			metrics.SideEffectFailures.WithLabelValues(kind, "notify").Inc()
			return fmt.Errorf("notify %s after %s: %w", email, kind, err)
		}
		log.Debug().Str("email", email).Str("kind", kind).Msg("notification sent")
		return nil
	})
}
