package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openshelf/catalog/internal/errors"
)

func TestName(t *testing.T) {
	name, reason := Name("  Frank Herbert  ")
	require.Empty(t, reason)
	require.Equal(t, "Frank Herbert", name)

	_, reason = Name(" F ")
	require.NotEmpty(t, reason, "single character name must fail")

	_, reason = Name(`Robert"); DROP TABLE`)
	require.Equal(t, "contains invalid characters", reason)

	for _, ch := range []string{"<", ">", `"`, "'", "&"} {
		_, reason = Name("ab" + ch)
		require.NotEmpty(t, reason, "character %q must be rejected", ch)
	}

	// Length counts characters, not bytes.
	_, reason = Name("王")
	require.NotEmpty(t, reason, "single multibyte character must fail")

	name, reason = Name("王明")
	require.Empty(t, reason)
	require.Equal(t, "王明", name)
}

func TestMessage(t *testing.T) {
	msg, reason := Message("  hello there world  ")
	require.Empty(t, reason)
	require.Equal(t, "hello there world", msg)

	_, reason = Message("too short")
	require.NotEmpty(t, reason)

	// Padding with whitespace does not rescue a short message.
	_, reason = Message("short    \n\t   ")
	require.NotEmpty(t, reason)

	// Length counts characters, not bytes.
	_, reason = Message("你好世界")
	require.NotEmpty(t, reason, "four multibyte characters must fail")

	msg, reason = Message("请帮我找到这本好书谢谢")
	require.Empty(t, reason)
	require.Equal(t, "请帮我找到这本好书谢谢", msg)
}

func TestPublicationYear(t *testing.T) {
	current := time.Now().Year()
	require.Empty(t, PublicationYear(current))
	require.Empty(t, PublicationYear(1965))
	require.Equal(t, "Publication year cannot be in the future.", PublicationYear(current+1))
}

func TestUsername(t *testing.T) {
	_, reason := Username("   ")
	require.Equal(t, "is required", reason)

	_, reason = Username(strings.Repeat("a", MaxUsernameLength+1))
	require.NotEmpty(t, reason)

	username, reason := Username(" reader ")
	require.Empty(t, reason)
	require.Equal(t, "reader", username)
}

func TestEmail(t *testing.T) {
	email, reason := Email(" reader@example.com ")
	require.Empty(t, reason)
	require.Equal(t, "reader@example.com", email)

	_, reason = Email("not-an-address")
	require.Equal(t, "must be a valid email address", reason)

	// RFC 5322 display-name and comment forms are not bare addresses.
	_, reason = Email("Bob <bob@example.com>")
	require.Equal(t, "must be a valid email address", reason)

	_, reason = Email("bob@example.com (Bob)")
	require.Equal(t, "must be a valid email address", reason)

	long := strings.Repeat("a", MaxEmailLength) + "@example.com"
	_, reason = Email(long)
	require.NotEmpty(t, reason)
}

func TestPassword(t *testing.T) {
	require.Empty(t, Password("longenough"))
	require.NotEmpty(t, Password("short"))
}

func TestErrorsAccumulate(t *testing.T) {
	var verrs Errors
	require.True(t, verrs.Empty())
	require.NoError(t, verrs.Err())

	verrs.Add("title", "is required")
	verrs.Add("title", "contains invalid characters")
	verrs.Add("publication_year", "Publication year cannot be in the future.")

	err := verrs.Err()
	require.Error(t, err)

	svcErr := errors.GetServiceError(err)
	require.NotNil(t, svcErr)
	require.Equal(t, errors.CodeValidationFailed, svcErr.Code)
	require.Len(t, svcErr.Details["title"], 2)
	require.Len(t, svcErr.Details["publication_year"], 1)
}
