package locale

import (
	"context"
	"testing"

	"golang.org/x/text/language"
)

type fixedResolver struct {
	method Method
	tag    language.Tag
	order  int
}

func (r fixedResolver) Supports(auth Authentication) bool { return auth.Method == r.method }

func (r fixedResolver) Locale(context.Context, Authentication) language.Tag { return r.tag }

func (r fixedResolver) Order() int { return r.order }

func TestRememberMeResolver_Supports(t *testing.T) {
	r := RememberMeResolver{Default: language.English}
	if !r.Supports(Authentication{Principal: "ann", Method: MethodRememberMe}) {
		t.Fatalf("expected remember-me support")
	}
	for _, m := range []Method{MethodPassword, MethodToken, MethodAnonymous, ""} {
		if r.Supports(Authentication{Method: m}) {
			t.Fatalf("unexpected support for %q", m)
		}
	}
}

func TestRememberMeResolver_SessionLocale(t *testing.T) {
	r := RememberMeResolver{Default: language.English}
	auth := Authentication{Principal: "ann", Method: MethodRememberMe}

	ctx := WithSession(context.Background(), Session{ID: "s1", Locale: language.French})
	if got := r.Locale(ctx, auth); got != language.French {
		t.Fatalf("expected session locale, got %s", got)
	}
}

func TestRememberMeResolver_DefaultWithoutSession(t *testing.T) {
	r := RememberMeResolver{Default: language.German}
	auth := Authentication{Method: MethodRememberMe}

	if got := r.Locale(context.Background(), auth); got != language.German {
		t.Fatalf("expected default locale, got %s", got)
	}
	ctx := WithSession(context.Background(), Session{ID: "s1"})
	if got := r.Locale(ctx, auth); got != language.German {
		t.Fatalf("expected default for session without locale, got %s", got)
	}
}

func TestRememberMeResolver_Order(t *testing.T) {
	if got := (RememberMeResolver{}).Order(); got != HighestPrecedence+90 {
		t.Fatalf("unexpected order %d", got)
	}
}

func TestChain_FirstSupportingResolverWins(t *testing.T) {
	late := fixedResolver{method: MethodRememberMe, tag: language.Spanish, order: 100}
	chain := NewChain(language.English, late, RememberMeResolver{Default: language.Italian})

	ctx := WithSession(context.Background(), Session{Locale: language.Japanese})
	if got := chain.Resolve(ctx, Authentication{Method: MethodRememberMe}); got != language.Japanese {
		t.Fatalf("expected remember-me resolver to run first, got %s", got)
	}
	if got := chain.Resolve(ctx, Authentication{Method: MethodPassword}); got != language.English {
		t.Fatalf("expected fallback, got %s", got)
	}
	if resolvers := chain.Resolvers(); len(resolvers) != 2 || resolvers[1].Order() != 100 {
		t.Fatalf("unexpected resolver order %v", resolvers)
	}
}

func TestChain_Lookup(t *testing.T) {
	chain := NewChain(language.English, RememberMeResolver{Default: language.Italian})
	ctx := WithSession(context.Background(), Session{Locale: language.Spanish})

	if tag, ok := chain.Lookup(ctx, Authentication{Method: MethodRememberMe}); !ok || tag != language.Spanish {
		t.Fatalf("expected session locale, got %s ok=%v", tag, ok)
	}
	if tag, ok := chain.Lookup(ctx, Authentication{Method: MethodAnonymous}); ok || tag != language.Und {
		t.Fatalf("expected no resolver, got %s ok=%v", tag, ok)
	}
}

func TestParseTag(t *testing.T) {
	if got := ParseTag("pt_BR", language.English); got != language.BrazilianPortuguese {
		t.Fatalf("expected pt-BR, got %s", got)
	}
	if got := ParseTag("", language.English); got != language.English {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := ParseTag("not a tag!", language.French); got != language.French {
		t.Fatalf("expected fallback for invalid tag, got %s", got)
	}
}
