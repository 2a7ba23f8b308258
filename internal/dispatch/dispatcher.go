// Package dispatch routes in-process commands from the shell to the
// account, vault and generator components.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/passvault/internal/convert"
	"github.com/and161185/passvault/internal/errs"
	"github.com/and161185/passvault/internal/generator"
	"github.com/and161185/passvault/internal/model"
	"github.com/and161185/passvault/internal/service"
	"github.com/and161185/passvault/internal/session"
)

// TokenValidator resolves a session token to an account id.
type TokenValidator interface {
	Validate(token string) (uuid.UUID, error)
}

var _ TokenValidator = (*session.Authority)(nil)

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	auth   service.AuthService
	vault  service.VaultService
	tokens TokenValidator
	log    *zap.Logger
	h      Handler
}

// New wires the components. The default chain is Recover, then Logging.
// Extra interceptors run inside them.
func New(auth service.AuthService, vault service.VaultService, tokens TokenValidator, log *zap.Logger, extra ...Interceptor) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{auth: auth, vault: vault, tokens: tokens, log: log}
	ics := append([]Interceptor{Recover(log), Logging(log)}, extra...)
	d.h = chain(d.handle, ics...)
	return d
}

// Dispatch executes req. Any returned error is a *Error.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (any, error) {
	if req == nil {
		return nil, &Error{Code: CodeInvalidArgument, Msg: "nil request"}
	}
	return d.h(ctx, req)
}

// Call dispatches req and asserts the response type.
func Call[T any](ctx context.Context, d *Dispatcher, req Request) (T, error) {
	var zero T
	resp, err := d.Dispatch(ctx, req)
	if err != nil {
		return zero, err
	}
	out, ok := resp.(T)
	if !ok {
		return zero, &Error{Code: CodeInternal, Msg: fmt.Sprintf("unexpected response %T for %s", resp, req.Command())}
	}
	return out, nil
}

func (d *Dispatcher) handle(ctx context.Context, req Request) (any, error) {
	if tb, ok := req.(tokenBearer); ok {
		id, err := d.authenticate(tb.token())
		if err != nil {
			d.log.Debug("token rejected", zap.String("command", req.Command()), zap.Error(err))
			return nil, &Error{Code: CodeUnauthenticated, Msg: msgBadToken}
		}
		ctx = WithAccountID(ctx, id)
	}

	resp, err := d.route(ctx, req)
	if err != nil {
		de := toError(req, err)
		if de.Code == CodeInternal || de.Code == CodeUnavailable {
			d.log.Error("command failed", zap.String("command", req.Command()), zap.Error(err))
		}
		return nil, de
	}
	return resp, nil
}

func (d *Dispatcher) authenticate(token string) (uuid.UUID, error) {
	if d.tokens == nil {
		return uuid.Nil, errs.ErrInvalidToken
	}
	return d.tokens.Validate(token)
}

func (d *Dispatcher) route(ctx context.Context, req Request) (any, error) {
	owner, _ := AccountIDFromCtx(ctx)

	switch r := req.(type) {
	case RegisterRequest:
		a, err := d.auth.Register(ctx, r.Username, r.Password)
		if err != nil {
			return nil, err
		}
		return convert.ToAccountResponse(a), nil

	case LoginRequest:
		tok, err := d.auth.Login(ctx, r.Username, r.Password)
		if err != nil {
			return nil, err
		}
		return tok.Value, nil

	case CreateEntryRequest:
		e, err := d.vault.Create(ctx, owner, model.NewEntry{Key: r.Key, Value: r.Value, Notes: r.Notes})
		if err != nil {
			return nil, err
		}
		return convert.ToEntryResponse(e), nil

	case ListEntriesRequest:
		return d.vault.List(ctx, owner)

	case GetEntryRequest:
		e, err := d.vault.Get(ctx, owner, r.Key)
		if err != nil {
			return nil, err
		}
		return *e, nil

	case UpdateEntryRequest:
		id, err := convert.ParseID(r.ID)
		if err != nil {
			return nil, err
		}
		e, err := d.vault.Update(ctx, owner, model.EntryUpdate{ID: id, Value: r.Value, Notes: r.Notes})
		if err != nil {
			return nil, err
		}
		return convert.ToEntryResponse(e), nil

	case DeleteEntryRequest:
		e, err := d.vault.Delete(ctx, owner, r.Key)
		if err != nil {
			return nil, err
		}
		return convert.ToEntryResponse(e), nil

	case ImportEntriesRequest:
		if r.CSV == nil {
			return nil, fmt.Errorf("%w: no csv input", errs.ErrInvalidArgument)
		}
		records, err := convert.FromCSV(r.CSV)
		if err != nil {
			return nil, err
		}
		return d.vault.Import(ctx, owner, records)

	case GeneratePasswordRequest:
		length := generator.DefaultLength
		if r.Length != nil {
			length = *r.Length
		}
		return generator.Generate(generator.Options{
			Length:    length,
			Uppercase: r.Uppercase,
			Numbers:   r.Numbers,
			Symbols:   r.Symbols,
		})

	default:
		return nil, errors.New("unknown request")
	}
}
