package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mkarpenko/url-shortener/internal/models"
	"github.com/mkarpenko/url-shortener/internal/shortcode"
	"github.com/mkarpenko/url-shortener/internal/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockURLStore struct {
	mock.Mock
}

func (s *MockURLStore) Insert(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	args := s.Called(ctx, shortCode, originalURL)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (s *MockURLStore) Get(ctx context.Context, shortCode string) (*models.URL, error) {
	args := s.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (s *MockURLStore) IncrementClick(ctx context.Context, shortCode string) (*models.URL, error) {
	args := s.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

type URLServiceTestSuite struct {
	suite.Suite
	errUnknown error
	storeMock  *MockURLStore
	svc        *URLService
}

func (suite *URLServiceTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *URLServiceTestSuite) SetupSubTest() {
	suite.storeMock = new(MockURLStore)
	suite.svc = NewURLService(suite.storeMock, shortcode.New())
}

func (suite *URLServiceTestSuite) TearDownSubTest() {
	suite.storeMock.AssertExpectations(suite.T())
}

func (suite *URLServiceTestSuite) TestShortenURL() {
	suite.Run("invalid url", func() {
		url, err := suite.svc.ShortenURL(context.Background(), "not a url")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidURL)
		suite.Nil(url)
		suite.storeMock.AssertNotCalled(suite.T(), "Insert")
	})

	suite.Run("maximum retries error", func() {
		suite.storeMock.
			On("Insert", context.Background(), mock.Anything, "https://example.com").
			Times(10).
			Return(nil, storage.ErrShortCodeExists)

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, ErrMaxRetriesExceeded)
		suite.Nil(url)
	})

	suite.Run("retries once on collision", func() {
		suite.storeMock.
			On("Insert", context.Background(), mock.Anything, "https://example.com").
			Once().
			Return(nil, storage.ErrShortCodeExists)
		suite.storeMock.
			On("Insert", context.Background(), mock.Anything, "https://example.com").
			Once().
			Return(&models.URL{
				ShortCode:   "Ab3Xy9",
				OriginalURL: "https://example.com",
			}, nil)

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("Ab3Xy9", url.ShortCode)
	})

	suite.Run("unknown error", func() {
		suite.storeMock.
			On("Insert", context.Background(), mock.Anything, "https://example.com").
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		var gotCode string

		suite.storeMock.
			On("Insert", context.Background(), mock.Anything, "https://example.com/page").
			Once().
			Run(func(args mock.Arguments) {
				gotCode = args.String(1)
			}).
			Return(&models.URL{
				ShortCode:   "Ab3Xy9",
				OriginalURL: "https://example.com/page",
			}, nil)

		url, err := suite.svc.ShortenURL(context.Background(), "https://example.com/page")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("https://example.com/page", url.OriginalURL)
		suite.Zero(url.ClickCount)
		suite.True(shortcode.Valid(gotCode), "generated code %q", gotCode)
	})

	suite.Run("normalizes url before storing", func() {
		suite.storeMock.
			On("Insert", context.Background(), mock.Anything, "https://example.com/Page").
			Once().
			Return(&models.URL{
				ShortCode:   "Ab3Xy9",
				OriginalURL: "https://example.com/Page",
			}, nil)

		url, err := suite.svc.ShortenURL(context.Background(), "  HTTPS://EXAMPLE.COM/Page ")

		suite.NoError(err)
		suite.NotNil(url)
	})
}

func (suite *URLServiceTestSuite) TestResolveShortCode() {
	suite.Run("url not found", func() {
		suite.storeMock.
			On("IncrementClick", context.Background(), "ZZZZZZ").
			Once().
			Return(nil, storage.ErrURLNotFound)

		url, err := suite.svc.ResolveShortCode(context.Background(), "ZZZZZZ")

		suite.Error(err)
		suite.ErrorIs(err, storage.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.storeMock.
			On("IncrementClick", context.Background(), "Ab3Xy9").
			Once().
			Return(&models.URL{
				ShortCode:   "Ab3Xy9",
				OriginalURL: "https://example.com",
				ClickCount:  1,
			}, nil)

		url, err := suite.svc.ResolveShortCode(context.Background(), "Ab3Xy9")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("https://example.com", url.OriginalURL)
		suite.Equal(int64(1), url.ClickCount)
	})
}

func (suite *URLServiceTestSuite) TestGetURLStats() {
	suite.Run("url not found", func() {
		suite.storeMock.
			On("Get", context.Background(), "ZZZZZZ").
			Once().
			Return(nil, storage.ErrURLNotFound)

		url, err := suite.svc.GetURLStats(context.Background(), "ZZZZZZ")

		suite.Error(err)
		suite.ErrorIs(err, storage.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.storeMock.
			On("Get", context.Background(), "Ab3Xy9").
			Once().
			Return(&models.URL{
				ShortCode:   "Ab3Xy9",
				OriginalURL: "https://example.com",
				ClickCount:  2,
			}, nil)

		url, err := suite.svc.GetURLStats(context.Background(), "Ab3Xy9")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal(int64(2), url.ClickCount)
	})
}

func TestURLServiceTestSuite(t *testing.T) {
	suite.Run(t, new(URLServiceTestSuite))
}
