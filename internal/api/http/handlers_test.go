package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/nexxeln/website/internal/models"
	"github.com/nexxeln/website/internal/slug"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockLinkService struct {
	mock.Mock
}

func (s *MockLinkService) CheckSlug(ctx context.Context, slug string) (bool, error) {
	args := s.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (s *MockLinkService) CreateLink(ctx context.Context, slug, url string) (*models.Link, error) {
	args := s.Called(ctx, slug, url)
	link, _ := args.Get(0).(*models.Link)
	return link, args.Error(1)
}

type HandlersTestSuite struct {
	suite.Suite
	logger      *httplog.Logger
	linkSvcMock *MockLinkService
	server      *httptest.Server
	e           *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.linkSvcMock = new(MockLinkService)

	router := NewRouter(suite.logger, suite.linkSvcMock, "https://nexxel.dev")
	suite.server = httptest.NewServer(router)
	suite.T().Cleanup(func() {
		suite.server.Close()
	})

	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.linkSvcMock.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestPing() {
	const path = "/api/v1/ping"

	suite.Run("success", func() {
		suite.e.GET(path).
			Expect().
			Status(http.StatusOK).
			Text().IsEqual("pong")
	})
}

func (suite *HandlersTestSuite) TestDocs() {
	suite.Run("swagger document", func() {
		suite.e.GET("/docs/swagger.yml").
			Expect().
			Status(http.StatusOK).
			Text().Contains("/api/v1/links")
	})
}

func (suite *HandlersTestSuite) TestCheckSlug() {
	const path = "/api/v1/slugs/{slug}"

	suite.Run("invalid slug", func() {
		suite.linkSvcMock.
			On("CheckSlug", mock.Anything, strings.Repeat("a", 21)).
			Once().
			Return(false, slug.ErrInvalid)

		resp := suite.e.GET(path, strings.Repeat("a", 21)).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.ContainsKey("message")
	})

	suite.Run("server error", func() {
		suite.linkSvcMock.
			On("CheckSlug", mock.Anything, "cat-in-hat").
			Once().
			Return(false, errors.New("unknown error"))

		resp := suite.e.GET(path, "cat-in-hat").
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object()

		resp.HasValue("status", "error")
	})

	suite.Run("used", func() {
		suite.linkSvcMock.
			On("CheckSlug", mock.Anything, "taken").
			Once().
			Return(true, nil)

		resp := suite.e.GET(path, "taken").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("status", "success")
		data := resp.Value("data").Object()
		data.HasValue("slug", "taken")
		data.HasValue("used", true)
	})

	suite.Run("lowercases slug", func() {
		suite.linkSvcMock.
			On("CheckSlug", mock.Anything, "free-one").
			Once().
			Return(false, nil)

		resp := suite.e.GET(path, "FREE-ONE").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		data := resp.Value("data").Object()
		data.HasValue("slug", "free-one")
		data.HasValue("used", false)
	})
}

func (suite *HandlersTestSuite) TestCreateLink() {
	const path = "/api/v1/links"

	suite.Run("empty request body", func() {
		resp := suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.ContainsKey("message")
	})

	suite.Run("invalid request body", func() {
		resp := suite.e.POST(path).
			WithJSON("invalid body").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.ContainsKey("message")
	})

	suite.Run("validation error", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{"slug": "cat in hat", "url": "invalid url"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("status", "error")
		errs := resp.Value("errors").Array()
		errs.Length().IsEqual(2)
		errs.Value(0).Object().HasValue("field", "slug")
		errs.Value(1).Object().HasValue("field", "url")
	})

	suite.Run("url too long", func() {
		resp := suite.e.POST(path).
			WithJSON(map[string]string{
				"slug": "cat-in-hat",
				"url":  "https://example.com/" + strings.Repeat("a", 3000),
			}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.Value("errors").Array().Value(0).Object().
			HasValue("field", "url").
			HasValue("message", "value is too long")
	})

	suite.Run("slug taken", func() {
		suite.linkSvcMock.
			On("CreateLink", mock.Anything, "cat-in-hat", "https://example.com").
			Once().
			Return(nil, models.ErrSlugTaken)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"slug": "cat-in-hat", "url": "https://example.com"}).
			Expect().
			Status(http.StatusConflict).
			JSON().Object()

		resp.HasValue("status", "error")
	})

	suite.Run("server error", func() {
		suite.linkSvcMock.
			On("CreateLink", mock.Anything, "cat-in-hat", "https://example.com").
			Once().
			Return(nil, errors.New("unknown error"))

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"slug": "cat-in-hat", "url": "https://example.com"}).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object()

		resp.HasValue("status", "error")
	})

	suite.Run("success", func() {
		createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

		suite.linkSvcMock.
			On("CreateLink", mock.Anything, "cat-in-hat", "https://example.com").
			Once().
			Return(&models.Link{
				ID:        1,
				Slug:      "cat-in-hat",
				URL:       "https://example.com",
				CreatedAt: createdAt,
			}, nil)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"slug": "cat-in-hat", "url": "https://example.com"}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object()

		resp.HasValue("status", "success")
		data := resp.Value("data").Object()
		data.HasValue("id", 1)
		data.HasValue("slug", "cat-in-hat")
		data.HasValue("url", "https://example.com")
		data.HasValue("short_url", "https://nexxel.dev/r/cat-in-hat")
		data.HasValue("created_at", "2024-01-02T03:04:05Z")
	})

	suite.Run("generated slug", func() {
		suite.linkSvcMock.
			On("CreateLink", mock.Anything, "", "https://example.com").
			Once().
			Return(&models.Link{ID: 2, Slug: "abc1234", URL: "https://example.com"}, nil)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object()

		resp.Value("data").Object().HasValue("short_url", "https://nexxel.dev/r/abc1234")
	})
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
