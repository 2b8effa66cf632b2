// Package hook is the boundary the hook adapter calls into. Every entry point
// runs reload, snapshot, classify and redirect on the caller's goroutine and
// never panics or returns an error to the adapter.
package hook

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/chimio/inxlocker/internal/intent"
	"github.com/chimio/inxlocker/internal/log"
	"github.com/chimio/inxlocker/internal/prefs"
	"github.com/chimio/inxlocker/internal/rule"
	"github.com/chimio/inxlocker/internal/rule/action"
	"github.com/chimio/inxlocker/internal/rule/common"
	"github.com/chimio/inxlocker/internal/statistics"
)

var (
	ErrNoIntent    = errors.New("no intent at call site")
	ErrFieldAccess = errors.New("intent field access failed")
	ErrWriteBack   = errors.New("intent write-back failed")
	ErrHookPanic   = errors.New("hook panic")
)

// FieldAccessor reaches the intent held by the privileged starter. The
// adapter implements it.
type FieldAccessor interface {
	Get() (*intent.Intent, error)
	Set(*intent.Intent) error
}

// SettingsStore is the reloadable settings cache.
type SettingsStore interface {
	common.Settings
	Reload()
}

type Options struct {
	RecentSize int
	RecentTTL  time.Duration
}

var DefaultOptions = Options{
	RecentSize: 200,
	RecentTTL:  30 * time.Minute,
}

type Interceptor struct {
	store    SettingsStore
	engine   *rule.Engine
	redirect *action.Redirect
	recorder *statistics.Recorder
	recent   *expirable.LRU[string, Outcome]
}

// New builds an interceptor over store. recorder may be nil.
func New(store SettingsStore, recorder *statistics.Recorder, opts Options) *Interceptor {
	if opts.RecentSize <= 0 {
		opts.RecentSize = DefaultOptions.RecentSize
	}
	return &Interceptor{
		store:    store,
		engine:   rule.NewEngine(store),
		redirect: action.NewRedirect(store),
		recorder: recorder,
		recent:   expirable.NewLRU[string, Outcome](opts.RecentSize, nil, opts.RecentTTL),
	}
}

func (h *Interceptor) Engine() *rule.Engine {
	return h.engine
}

// BeforeStartActivity handles the context-level and foreground sites, where
// the intent is a plain argument and is rewritten in place.
func (h *Interceptor) BeforeStartActivity(site Site, in *intent.Intent) (out Outcome) {
	out = h.begin(site)
	defer h.finish(&out)

	h.process(&out, in)
	return out
}

// BeforeStarterExecute handles the privileged site. A redirected intent is
// written back through acc; if that fails the intent is restored to what Get
// returned.
func (h *Interceptor) BeforeStarterExecute(acc FieldAccessor) (out Outcome) {
	out = h.begin(SiteStarterExecute)
	defer h.finish(&out)

	if acc == nil {
		out.Err = ErrNoIntent
		return out
	}
	in, err := acc.Get()
	if err != nil {
		out.Err = fmt.Errorf("%w: %w", ErrFieldAccess, err)
		return out
	}
	original := in.Clone()

	h.process(&out, in)
	if !out.Redirected {
		return out
	}

	if err := safeSet(acc, in); err != nil {
		*in = *original
		out.Redirected = false
		out.Err = fmt.Errorf("%w: %w", ErrWriteBack, err)
	}
	return out
}

// safeSet turns a panicking accessor into an error so the caller can still
// restore the request.
func safeSet(acc FieldAccessor, in *intent.Intent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHookPanic, r)
		}
	}()
	return acc.Set(in)
}

// OnSettingsChanged reloads the store right away instead of waiting for the
// next firing.
func (h *Interceptor) OnSettingsChanged() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Interceptor.OnSettingsChanged panic", slog.Any("panic", r))
		}
	}()

	h.store.Reload()
	debug := h.store.GetBool(prefs.KeyEnableDebugLog, true)
	log.SetDebug(debug)
	if h.recorder != nil {
		h.recorder.Metrics().ObserveSettingsReload()
	}
	slog.Info("Settings reloaded",
		slog.String("installer", h.store.GetString(prefs.KeySelectedInstaller, "")),
		slog.Bool("intercept_uninstall", h.store.GetBool(prefs.KeyInterceptUninstall, false)),
		slog.Bool("debug", debug))
}

// Recent returns the outcomes still held by the audit cache, oldest first.
func (h *Interceptor) Recent() []Outcome {
	return h.recent.Values()
}

func (h *Interceptor) begin(site Site) Outcome {
	return Outcome{
		EventID: uuid.NewString(),
		Site:    site,
		Time:    time.Now(),
	}
}

func (h *Interceptor) process(out *Outcome, in *intent.Intent) {
	h.store.Reload()
	log.SetDebug(h.store.GetBool(prefs.KeyEnableDebugLog, true))

	if in == nil {
		out.Err = ErrNoIntent
		return
	}
	out.Snapshot = intent.Capture(in)
	log.LogDebugWithEvent(out.EventID, string(out.Site), "Intent received",
		slog.Any("snapshot", out.Snapshot),
		slog.String("type", in.Type),
		slog.String("data", in.Data),
		slog.String("flags", in.Flags.String()))

	if h.alreadyRedirected(in) {
		out.AlreadyRedirected = true
		out.Package = in.Package
		out.Action = in.Action
		return
	}

	out.Uninstall = h.engine.IsUninstall(in.Action)
	v := h.engine.Evaluate(in)
	out.Decision = v.Decision
	out.Rule = v.Rule
	if v.Err != nil {
		log.LogDebugWithEvent(out.EventID, string(out.Site), "Classification failed", slog.Any("error", v.Err))
	}
	if v.Decision != common.ShouldRedirect {
		if out.Uninstall {
			log.LogDebugWithEvent(out.EventID, string(out.Site), "Uninstall request left to platform", slog.String("action", in.Action))
		}
		return
	}

	res := h.redirect.Apply(in)
	out.Redirected = res.Applied
	out.Package = res.Package
	out.Action = res.Action
	out.Err = res.Err
}

// alreadyRedirected reports whether in is the result of an earlier redirect:
// scoped to the selected installer, no component, redirect flags set and a
// non-install action. Re-firing on such an intent is a no-op.
func (h *Interceptor) alreadyRedirected(in *intent.Intent) bool {
	installer := h.store.GetString(prefs.KeySelectedInstaller, "")
	if installer == "" || in.Package != installer || in.Component != nil {
		return false
	}
	if !in.Flags.Has(action.RedirectFlags) {
		return false
	}
	return in.Action != intent.ActionInstallPackage
}

func (h *Interceptor) finish(out *Outcome) {
	if r := recover(); r != nil {
		out.Redirected = false
		out.Err = fmt.Errorf("%w: %v", ErrHookPanic, r)
	}
	if out.Err != nil {
		out.Error = out.Err.Error()
	}

	switch {
	case errors.Is(out.Err, ErrHookPanic), errors.Is(out.Err, ErrWriteBack), errors.Is(out.Err, ErrFieldAccess):
		log.LogErrorWithEvent(out.EventID, string(out.Site), "Hook failed", slog.Any("outcome", *out))
	case out.Err != nil:
		log.LogDebugWithEvent(out.EventID, string(out.Site), "Hook skipped", slog.Any("error", out.Err))
	default:
		log.LogDebugWithEvent(out.EventID, string(out.Site), "Hook done", slog.Any("outcome", *out))
	}

	h.recent.Add(out.EventID, *out)
	h.record(out)
}

func (h *Interceptor) record(out *Outcome) {
	if h.recorder == nil {
		return
	}
	metrics := h.recorder.Metrics()
	metrics.ObserveClassification(string(out.Site), out.Decision.String())

	switch {
	case out.Redirected:
		metrics.ObserveRedirect(statistics.RedirectApplied)
		h.recorder.AddRecord(&statistics.RedirectRecord{
			Package:        out.Package,
			OriginalAction: out.Snapshot.Action,
			Action:         out.Action,
			LastSeen:       out.Time,
		})
	case out.AlreadyRedirected:
		metrics.ObserveRedirect(statistics.RedirectSkipped)
	case out.Decision == common.ShouldRedirect:
		metrics.ObserveRedirect(statistics.RedirectFailed)
	default:
		h.recorder.AddRecord(&statistics.PassRecord{
			Site:   string(out.Site),
			Action: out.Snapshot.Action,
			Rule:   string(out.Rule),
		})
	}
}
