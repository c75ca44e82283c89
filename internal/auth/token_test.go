package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key-minimum-32-characters")

func TestIssuer_IssueAndVerify(t *testing.T) {
	t.Run("round trip returns the issued user ID", func(t *testing.T) {
		issuer, err := NewIssuer(testSecret, time.Hour)
		require.NoError(t, err)

		userID, err := uuid.NewV7()
		require.NoError(t, err)

		token, err := issuer.Issue(userID)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		verified, err := issuer.Verify(token)
		require.NoError(t, err)
		require.Equal(t, userID, verified)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		issuer, err := NewIssuer(testSecret, time.Hour)
		require.NoError(t, err)

		userID, err := uuid.NewV7()
		require.NoError(t, err)

		token, err := issuer.Issue(userID)
		require.NoError(t, err)

		_, err = issuer.Verify(token + "x")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token from a different secret is rejected", func(t *testing.T) {
		issuer, err := NewIssuer(testSecret, time.Hour)
		require.NoError(t, err)
		other, err := NewIssuer([]byte("another-secret-key-minimum-32-chars!!"), time.Hour)
		require.NoError(t, err)

		userID, err := uuid.NewV7()
		require.NoError(t, err)

		token, err := other.Issue(userID)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		issuer, err := NewIssuer(testSecret, time.Nanosecond)
		require.NoError(t, err)

		userID, err := uuid.NewV7()
		require.NoError(t, err)

		token, err := issuer.Issue(userID)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		_, err = issuer.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("short secret is rejected", func(t *testing.T) {
		_, err := NewIssuer([]byte("short"), time.Hour)
		require.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Run("hash verifies against original password", func(t *testing.T) {
		hash, err := HashPassword("hunter2!")
		require.NoError(t, err)
		require.NoError(t, CheckPassword(hash, "hunter2!"))
	})

	t.Run("wrong password returns ErrWrongPassword", func(t *testing.T) {
		hash, err := HashPassword("hunter2!")
		require.NoError(t, err)
		require.ErrorIs(t, CheckPassword(hash, "hunter3!"), ErrWrongPassword)
	})
}
