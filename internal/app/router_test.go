package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/middlewares"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	mock_models "github.com/Project-mardianto/algoplus-app/internal/models/mocks"
	"github.com/Project-mardianto/algoplus-app/internal/realtime"
	"github.com/Project-mardianto/algoplus-app/internal/services"
	"github.com/Project-mardianto/algoplus-app/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type routeCase struct {
	testName        string
	methodName      string
	targetURL       string
	body            func() io.Reader
	test            func(t *testing.T)
	expectedCode    int
	expectedMessage string
	testResponse    func(t *testing.T, res *http.Response, body string)
}

func runRouteCases(t *testing.T, testServer *httptest.Server, headers map[string]string, testCases []routeCase) {
	t.Helper()

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			var body io.Reader

			if tc.body != nil {
				body = tc.body()
			}

			if tc.test != nil {
				tc.test(t)
			}

			res, mes := utils.TestRequest(t, testServer, tc.methodName, tc.targetURL, headers, body)
			res.Body.Close()

			assert.Equal(t, tc.expectedCode, res.StatusCode)
			if tc.expectedMessage != "" {
				assert.Equal(t, tc.expectedMessage, mes)
			}
			if tc.testResponse != nil {
				tc.testResponse(t, res, mes)
			}
		})
	}
}

func jsonBody(v any) func() io.Reader {
	return func() io.Reader {
		data, _ := json.Marshal(v)
		return bytes.NewBuffer(data)
	}
}

// expectUser makes the auth middleware resolve "token" to user.
func expectUser(jwtServiceMock *mock_models.MockJWTService, authServiceMock *mock_models.MockAuthService, user models.User) {
	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": user.ID})

	jwtServiceMock.EXPECT().ValidateToken("token").Return(jwtToken, nil)
	authServiceMock.EXPECT().GetUserByID(gomock.Any(), user.ID).Return(&user, nil)
}

var (
	customer = models.User{ID: "customer-id", Login: "siti@example.com", Role: models.RoleCustomer}
	driver   = models.User{ID: "driver-id", Login: "andi@example.com", Role: models.RoleDriver}
	supplier = models.User{ID: "supplier-id", Login: "depot@example.com", Role: models.RoleSupplier}
)

var authHeaders = map[string]string{"Content-Type": "application/json", "Authorization": "Bearer token"}

func TestRegisterRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{Auth: authServiceMock, JWT: jwtServiceMock}, nil).get(),
	)
	defer testServer.Close()

	login := "user"
	password := "123456"

	runRouteCases(t, testServer, map[string]string{"Content-Type": "application/json"}, []routeCase{
		{
			testName:        "Should reject a request without body",
			methodName:      "POST",
			targetURL:       "/api/user/register",
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Error occurred during parsing JSON data: unexpected end of JSON input\n",
		},
		{
			testName:        "Should reject a request without login",
			methodName:      "POST",
			targetURL:       "/api/user/register",
			body:            jsonBody(models.UnknownUser{Password: &password}),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Request has no login or password\n",
		},
		{
			testName:   "Should reject a registered login",
			methodName: "POST",
			targetURL:  "/api/user/register",
			test: func(t *testing.T) {
				authServiceMock.EXPECT().Register(gomock.Any(), models.UnknownUser{Login: &login, Password: &password}).Return(services.ErrUserIsAlreadyRegistered)
			},
			body:            jsonBody(models.UnknownUser{Login: &login, Password: &password}),
			expectedCode:    http.StatusConflict,
			expectedMessage: "User is already registered\n",
		},
		{
			testName:   "Should ignore a requested role",
			methodName: "POST",
			targetURL:  "/api/user/register",
			test: func(t *testing.T) {
				user := models.User{ID: "user-id", Login: login, Role: models.RoleCustomer}

				authServiceMock.EXPECT().Register(gomock.Any(), models.UnknownUser{Login: &login, Password: &password}).Return(nil)
				authServiceMock.EXPECT().GetUser(gomock.Any(), login).Return(&user, nil)
				jwtServiceMock.EXPECT().GenerateJWT(user).Return("token", nil)
			},
			body:         jsonBody(map[string]string{"login": login, "password": password, "role": "supplier"}),
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Contains(t, body, `"role":"customer"`)
			},
		},
		{
			testName:   "Should register the user",
			methodName: "POST",
			targetURL:  "/api/user/register",
			test: func(t *testing.T) {
				user := models.User{ID: "user-id", Login: login, Role: models.RoleCustomer}

				authServiceMock.EXPECT().Register(gomock.Any(), models.UnknownUser{Login: &login, Password: &password}).Return(nil)
				authServiceMock.EXPECT().GetUser(gomock.Any(), login).Return(&user, nil)
				jwtServiceMock.EXPECT().GenerateJWT(user).Return("token", nil)
			},
			body:         jsonBody(models.UnknownUser{Login: &login, Password: &password}),
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Equal(t, "Bearer token", res.Header.Get("Authorization"))
				assert.JSONEq(t, `{"token":"token","id":"user-id","login":"user","role":"customer"}`, body)
			},
		},
	})
}

func TestLoginRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{Auth: authServiceMock, JWT: jwtServiceMock}, nil).get(),
	)
	defer testServer.Close()

	login := "user"
	password := "123456"

	runRouteCases(t, testServer, map[string]string{"Content-Type": "application/json"}, []routeCase{
		{
			testName:        "Should reject a request without password",
			methodName:      "POST",
			targetURL:       "/api/user/login",
			body:            jsonBody(models.UnknownUser{Login: &login}),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Request has no login or password\n",
		},
		{
			testName:   "Should reject an unknown user",
			methodName: "POST",
			targetURL:  "/api/user/login",
			test: func(t *testing.T) {
				authServiceMock.EXPECT().Login(gomock.Any(), models.UnknownUser{Login: &login, Password: &password}).Return(services.ErrUserIsNotExist)
			},
			body:            jsonBody(models.UnknownUser{Login: &login, Password: &password}),
			expectedCode:    http.StatusUnauthorized,
			expectedMessage: "User with login user does not exist\n",
		},
		{
			testName:   "Should reject a wrong password",
			methodName: "POST",
			targetURL:  "/api/user/login",
			test: func(t *testing.T) {
				authServiceMock.EXPECT().Login(gomock.Any(), models.UnknownUser{Login: &login, Password: &password}).Return(services.ErrPasswordIsIncorrect)
			},
			body:            jsonBody(models.UnknownUser{Login: &login, Password: &password}),
			expectedCode:    http.StatusUnauthorized,
			expectedMessage: "Password is incorrect\n",
		},
		{
			testName:   "Should return the authorization header",
			methodName: "POST",
			targetURL:  "/api/user/login",
			test: func(t *testing.T) {
				user := models.User{ID: "user-id", Login: login, Role: models.RoleDriver}

				authServiceMock.EXPECT().Login(gomock.Any(), models.UnknownUser{Login: &login, Password: &password}).Return(nil)
				authServiceMock.EXPECT().GetUser(gomock.Any(), login).Return(&user, nil)
				jwtServiceMock.EXPECT().GenerateJWT(user).Return("token", nil)
			},
			body:         jsonBody(models.UnknownUser{Login: &login, Password: &password}),
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Equal(t, "Bearer token", res.Header.Get("Authorization"))
				assert.Contains(t, body, `"role":"driver"`)
			},
		},
	})
}

func TestAuthMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)
	orderServiceMock := mock_models.NewMockOrderService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{Auth: authServiceMock, JWT: jwtServiceMock, Order: orderServiceMock}, nil).get(),
	)
	defer testServer.Close()

	t.Run("Should require a token", func(t *testing.T) {
		res, mes := utils.TestRequest(t, testServer, "GET", "/api/orders", nil, nil)
		res.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "Authorization header is required\n", mes)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		jwtServiceMock.EXPECT().ValidateToken("token").Return(nil, services.ErrTokenIsExpired)

		res, mes := utils.TestRequest(t, testServer, "GET", "/api/orders", authHeaders, nil)
		res.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "Token is expired\n", mes)
	})

	t.Run("Should reject a deleted user", func(t *testing.T) {
		jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "gone"})
		jwtServiceMock.EXPECT().ValidateToken("token").Return(jwtToken, nil)
		authServiceMock.EXPECT().GetUserByID(gomock.Any(), "gone").Return(nil, services.ErrUserIsNotExist)

		res, mes := utils.TestRequest(t, testServer, "GET", "/api/orders", authHeaders, nil)
		res.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "User does not exist\n", mes)
	})

	t.Run("Should read the token from the query", func(t *testing.T) {
		expectUser(jwtServiceMock, authServiceMock, customer)
		orderServiceMock.EXPECT().ListOrders(gomock.Any(), customer.Actor()).Return(nil, nil)

		res, _ := utils.TestRequest(t, testServer, "GET", "/api/orders?access_token=token", nil, nil)
		res.Body.Close()

		assert.Equal(t, http.StatusNoContent, res.StatusCode)
	})
}

func TestOrderRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)
	orderServiceMock := mock_models.NewMockOrderService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{Auth: authServiceMock, JWT: jwtServiceMock, Order: orderServiceMock}, nil).get(),
	)
	defer testServer.Close()

	preparing := models.StatusPreparing
	arrived := models.StatusArrived
	order := models.Order{
		ID:           7,
		UserID:       customer.ID,
		Status:       models.StatusPreparing,
		TotalAmount:  73000,
		NextStatuses: []models.OrderStatus{models.StatusReadyForPickup},
	}

	runRouteCases(t, testServer, authHeaders, []routeCase{
		{
			testName:   "Should answer 204 when nothing is visible",
			methodName: "GET",
			targetURL:  "/api/orders",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				orderServiceMock.EXPECT().ListOrders(gomock.Any(), customer.Actor()).Return([]models.Order{}, nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			testName:   "Should list orders",
			methodName: "GET",
			targetURL:  "/api/orders",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, supplier)
				orderServiceMock.EXPECT().ListOrders(gomock.Any(), supplier.Actor()).Return([]models.Order{order}, nil)
			},
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				var orders []models.Order
				require.NoError(t, json.Unmarshal([]byte(body), &orders))
				require.Len(t, orders, 1)
				assert.Equal(t, int64(7), orders[0].ID)
				assert.Equal(t, []models.OrderStatus{models.StatusReadyForPickup}, orders[0].NextStatuses)
			},
		},
		{
			testName:   "Should hide an order of another customer",
			methodName: "GET",
			targetURL:  "/api/orders/8",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				orderServiceMock.EXPECT().GetOrder(gomock.Any(), customer.Actor(), int64(8)).Return(nil, services.ErrOrderNotFound)
			},
			expectedCode:    http.StatusNotFound,
			expectedMessage: "order not found\n",
		},
		{
			testName:   "Should reject a malformed order id",
			methodName: "GET",
			targetURL:  "/api/orders/abc",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
			},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Invalid orderID\n",
		},
		{
			testName:   "Should return the status history",
			methodName: "GET",
			targetURL:  "/api/orders/7/history",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				orderServiceMock.EXPECT().History(gomock.Any(), customer.Actor(), int64(7)).Return([]models.StatusHistoryEntry{
					{To: models.StatusConfirmed},
					{From: ptr(models.StatusConfirmed), To: models.StatusPreparing, ActorID: supplier.ID},
				}, nil)
			},
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Contains(t, body, `"to":"preparing"`)
			},
		},
		{
			testName:   "Should move the order",
			methodName: "PATCH",
			targetURL:  "/api/orders/7/status",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, supplier)
				orderServiceMock.EXPECT().Transition(gomock.Any(), supplier.Actor(), int64(7), models.StatusPreparing).Return(&order, nil)
			},
			body:         jsonBody(models.TransitionRequest{Status: &preparing}),
			expectedCode: http.StatusOK,
		},
		{
			testName:   "Should reject a skipped step with 422",
			methodName: "PATCH",
			targetURL:  "/api/orders/7/status",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, supplier)
				orderServiceMock.EXPECT().Transition(gomock.Any(), supplier.Actor(), int64(7), models.StatusArrived).
					Return(nil, fmt.Errorf("%w: preparing -> arrived", services.ErrInvalidTransition))
			},
			body:         jsonBody(models.TransitionRequest{Status: &arrived}),
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			testName:   "Should require a status",
			methodName: "PATCH",
			targetURL:  "/api/orders/7/status",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, supplier)
			},
			body:            jsonBody(models.TransitionRequest{}),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Request has no status\n",
		},
		{
			testName:   "Should let a driver claim",
			methodName: "POST",
			targetURL:  "/api/orders/7/claim",
			test: func(t *testing.T) {
				claimed := order
				claimed.Status = models.StatusOutForDelivery
				claimed.DriverID = ptr(driver.ID)

				expectUser(jwtServiceMock, authServiceMock, driver)
				orderServiceMock.EXPECT().Claim(gomock.Any(), driver.Actor(), int64(7)).Return(&claimed, nil)
			},
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Contains(t, body, `"driver_id":"driver-id"`)
			},
		},
		{
			testName:   "Should answer 409 to the losing driver",
			methodName: "POST",
			targetURL:  "/api/orders/7/claim",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, driver)
				orderServiceMock.EXPECT().Claim(gomock.Any(), driver.Actor(), int64(7)).Return(nil, services.ErrClaimConflict)
			},
			expectedCode: http.StatusConflict,
		},
		{
			testName:   "Should not let a customer claim",
			methodName: "POST",
			targetURL:  "/api/orders/7/claim",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
			},
			expectedCode:    http.StatusForbidden,
			expectedMessage: "Not allowed for this role\n",
		},
	})
}

func TestAssignRoleRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{Auth: authServiceMock, JWT: jwtServiceMock}, nil).get(),
	)
	defer testServer.Close()

	driverRole := models.RoleDriver
	admin := models.Role("admin")

	runRouteCases(t, testServer, authHeaders, []routeCase{
		{
			testName:   "Should let a supplier appoint a driver",
			methodName: "PATCH",
			targetURL:  "/api/users/new-user/role",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, supplier)
				authServiceMock.EXPECT().AssignRole(gomock.Any(), supplier.Actor(), "new-user", models.RoleDriver).
					Return(&models.User{ID: "new-user", Login: "budi@example.com", Role: models.RoleDriver}, nil)
			},
			body:         jsonBody(models.RoleUpdate{Role: &driverRole}),
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.JSONEq(t, `{"id":"new-user","login":"budi@example.com","role":"driver"}`, body)
			},
		},
		{
			testName:   "Should not let a customer promote themselves",
			methodName: "PATCH",
			targetURL:  "/api/users/customer-id/role",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
			},
			body:            jsonBody(models.RoleUpdate{Role: &driverRole}),
			expectedCode:    http.StatusForbidden,
			expectedMessage: "Not allowed for this role\n",
		},
		{
			testName:   "Should reject an unknown role",
			methodName: "PATCH",
			targetURL:  "/api/users/new-user/role",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, supplier)
				authServiceMock.EXPECT().AssignRole(gomock.Any(), supplier.Actor(), "new-user", admin).
					Return(nil, fmt.Errorf("%w: admin", services.ErrInvalidRole))
			},
			body:            jsonBody(models.RoleUpdate{Role: &admin}),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "unknown role: admin\n",
		},
		{
			testName:   "Should require a role",
			methodName: "PATCH",
			targetURL:  "/api/users/new-user/role",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, supplier)
			},
			body:            jsonBody(models.RoleUpdate{}),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Request has no role\n",
		},
		{
			testName:   "Should answer 404 for an unknown user",
			methodName: "PATCH",
			targetURL:  "/api/users/ghost/role",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, supplier)
				authServiceMock.EXPECT().AssignRole(gomock.Any(), supplier.Actor(), "ghost", models.RoleDriver).
					Return(nil, services.ErrUserIsNotExist)
			},
			body:         jsonBody(models.RoleUpdate{Role: &driverRole}),
			expectedCode: http.StatusNotFound,
		},
	})
}

func TestCheckoutRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)
	checkoutServiceMock := mock_models.NewMockCheckoutService(ctrl)
	catalogServiceMock := mock_models.NewMockCatalogService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{
			Auth:     authServiceMock,
			JWT:      jwtServiceMock,
			Checkout: checkoutServiceMock,
			Catalog:  catalogServiceMock,
		}, nil).get(),
	)
	defer testServer.Close()

	request := models.CheckoutRequest{
		Items:         []models.CartItem{{ProductID: "galon-19l", Quantity: 3}},
		RentedGallons: 5,
		PaymentMethod: models.PaymentCash,
	}
	quote := models.Quote{Subtotal: 60000, DeliveryFee: 5000, GallonUnits: 3, RentedGallons: 3, RentalFee: 9000, Total: 74000}

	runRouteCases(t, testServer, authHeaders, []routeCase{
		{
			testName:   "Should place a cash order",
			methodName: "POST",
			targetURL:  "/api/checkout",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				checkoutServiceMock.EXPECT().Checkout(gomock.Any(), customer.Actor(), request).Return(&models.CheckoutResult{
					Quote: quote,
					Order: &models.Order{ID: 1, Status: models.StatusConfirmed, TotalAmount: quote.Total, RentedGallons: 3},
				}, nil)
			},
			body:         jsonBody(request),
			expectedCode: http.StatusCreated,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				var result models.CheckoutResult
				require.NoError(t, json.Unmarshal([]byte(body), &result))
				assert.Equal(t, 3, result.Quote.RentedGallons)
				assert.Equal(t, 3, result.Order.RentedGallons)
			},
		},
		{
			testName:   "Should return the payment token for card",
			methodName: "POST",
			targetURL:  "/api/checkout",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				checkoutServiceMock.EXPECT().Checkout(gomock.Any(), customer.Actor(), gomock.Any()).Return(&models.CheckoutResult{
					Quote:     quote,
					Reference: "ref-1",
					Token:     "snap-token",
				}, nil)
			},
			body:         jsonBody(request),
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Contains(t, body, `"token":"snap-token"`)
			},
		},
		{
			testName:   "Should answer 503 when the gateway is down",
			methodName: "POST",
			targetURL:  "/api/checkout",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				checkoutServiceMock.EXPECT().Checkout(gomock.Any(), customer.Actor(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: connection refused", services.ErrUpstreamUnavailable))
			},
			body:         jsonBody(request),
			expectedCode: http.StatusServiceUnavailable,
		},
		{
			testName:   "Should answer 400 to an invalid cart",
			methodName: "POST",
			targetURL:  "/api/checkout",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				checkoutServiceMock.EXPECT().Checkout(gomock.Any(), customer.Actor(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: cart is empty", services.ErrInvalidCheckout))
			},
			body:            jsonBody(models.CheckoutRequest{PaymentMethod: models.PaymentCash}),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "invalid checkout: cart is empty\n",
		},
		{
			testName:   "Should not let a driver check out",
			methodName: "POST",
			targetURL:  "/api/checkout",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, driver)
			},
			body:         jsonBody(request),
			expectedCode: http.StatusForbidden,
		},
		{
			testName:   "Should list products without a token",
			methodName: "GET",
			targetURL:  "/api/products",
			test: func(t *testing.T) {
				catalogServiceMock.EXPECT().ListProducts(gomock.Any()).Return([]models.Product{
					{ID: "galon-19l", Name: "Galon 19L", Price: 20000, Unit: models.UnitGallon},
				}, nil)
			},
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Contains(t, body, `"unit":"galon"`)
			},
		},
	})
}

func TestPaymentNotificationRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	checkoutServiceMock := mock_models.NewMockCheckoutService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{Checkout: checkoutServiceMock}, nil).get(),
	)
	defer testServer.Close()

	notification := models.PaymentNotification{
		OrderID:           "ref-1",
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "74000.00",
		SignatureKey:      "signature",
	}

	runRouteCases(t, testServer, map[string]string{"Content-Type": "application/json"}, []routeCase{
		{
			testName:   "Should accept a settlement",
			methodName: "POST",
			targetURL:  "/api/payments/notification",
			test: func(t *testing.T) {
				checkoutServiceMock.EXPECT().HandlePaymentNotification(gomock.Any(), notification).Return(models.PaymentSuccess, nil)
			},
			body:            jsonBody(notification),
			expectedCode:    http.StatusOK,
			expectedMessage: `{"outcome":"success"}`,
		},
		{
			testName:   "Should reject a forged notification",
			methodName: "POST",
			targetURL:  "/api/payments/notification",
			test: func(t *testing.T) {
				checkoutServiceMock.EXPECT().HandlePaymentNotification(gomock.Any(), gomock.Any()).Return(models.PaymentOutcome(""), services.ErrInvalidSignature)
			},
			body:         jsonBody(notification),
			expectedCode: http.StatusForbidden,
		},
		{
			testName:        "Should require an order id",
			methodName:      "POST",
			targetURL:       "/api/payments/notification",
			body:            jsonBody(models.PaymentNotification{}),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Notification has no order_id\n",
		},
	})
}

func TestPasswordRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	passwordServiceMock := mock_models.NewMockPasswordService(ctrl)

	testServer := httptest.NewServer(
		New(Config{ResetRate: rate.Every(time.Hour), ResetBurst: 1}, middlewares.Services{Password: passwordServiceMock}, nil).get(),
	)
	defer testServer.Close()

	email := "siti@example.com"
	token := "recovery"
	short := "123"

	runRouteCases(t, testServer, map[string]string{"Content-Type": "application/json"}, []routeCase{
		{
			testName:   "Should accept a reset request",
			methodName: "POST",
			targetURL:  "/api/user/password/reset",
			test: func(t *testing.T) {
				passwordServiceMock.EXPECT().RequestReset(gomock.Any(), email).Return(nil)
			},
			body:         jsonBody(models.PasswordResetRequest{Email: &email}),
			expectedCode: http.StatusAccepted,
		},
		{
			testName:        "Should limit reset requests per client",
			methodName:      "POST",
			targetURL:       "/api/user/password/reset",
			body:            jsonBody(models.PasswordResetRequest{Email: &email}),
			expectedCode:    http.StatusTooManyRequests,
			expectedMessage: "Too many requests\n",
		},
		{
			testName:   "Should reject a short password",
			methodName: "POST",
			targetURL:  "/api/user/password/update",
			test: func(t *testing.T) {
				passwordServiceMock.EXPECT().UpdatePassword(gomock.Any(), token, short).Return(services.ErrPasswordIsTooShort)
			},
			body:         jsonBody(models.PasswordUpdate{Token: &token, Password: &short}),
			expectedCode: http.StatusBadRequest,
		},
		{
			testName:   "Should reject an expired recovery token",
			methodName: "POST",
			targetURL:  "/api/user/password/update",
			test: func(t *testing.T) {
				passwordServiceMock.EXPECT().UpdatePassword(gomock.Any(), token, "new-password").Return(services.ErrTokenIsExpired)
			},
			body: func() io.Reader {
				password := "new-password"
				return jsonBody(models.PasswordUpdate{Token: &token, Password: &password})()
			},
			expectedCode: http.StatusUnauthorized,
		},
	})
}

func TestResetLimitForwardedHeaders(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		codes      []int
	}{
		{
			name:  "Should ignore rotating forwarded headers from direct clients",
			codes: []int{http.StatusAccepted, http.StatusTooManyRequests, http.StatusTooManyRequests},
		},
		{
			name:       "Should key on the forwarded client behind a trusted proxy",
			trustProxy: true,
			codes:      []int{http.StatusAccepted, http.StatusAccepted, http.StatusAccepted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			passwordServiceMock := mock_models.NewMockPasswordService(ctrl)
			passwordServiceMock.EXPECT().RequestReset(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

			testServer := httptest.NewServer(New(Config{
				TrustProxy: tt.trustProxy,
				ResetRate:  rate.Every(time.Hour),
				ResetBurst: 1,
			}, middlewares.Services{Password: passwordServiceMock}, nil).get())
			defer testServer.Close()

			email := "siti@example.com"
			for i, want := range tt.codes {
				headers := map[string]string{
					"Content-Type":    "application/json",
					"X-Forwarded-For": fmt.Sprintf("203.0.113.%d", i+1),
				}
				res, _ := utils.TestRequest(t, testServer, "POST", "/api/user/password/reset", headers, jsonBody(models.PasswordResetRequest{Email: &email})())
				res.Body.Close()

				assert.Equal(t, want, res.StatusCode, "request %d", i+1)
			}
		})
	}
}

func TestProfileRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)
	profileServiceMock := mock_models.NewMockProfileService(ctrl)
	notificationServiceMock := mock_models.NewMockNotificationService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{
			Auth:         authServiceMock,
			JWT:          jwtServiceMock,
			Profile:      profileServiceMock,
			Notification: notificationServiceMock,
		}, nil).get(),
	)
	defer testServer.Close()

	phone := "08123"

	runRouteCases(t, testServer, authHeaders, []routeCase{
		{
			testName:   "Should update the profile",
			methodName: "PATCH",
			targetURL:  "/api/profile",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				profileServiceMock.EXPECT().UpdateProfile(gomock.Any(), customer.ID, models.ProfileUpdate{Phone: &phone}).
					Return(&models.Profile{UserID: customer.ID, Phone: phone}, nil)
			},
			body:         jsonBody(models.ProfileUpdate{Phone: &phone}),
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Contains(t, body, `"phone":"08123"`)
			},
		},
		{
			testName:   "Should save an address for the current user",
			methodName: "POST",
			targetURL:  "/api/profile/addresses",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				expected := models.Address{UserID: customer.ID, Label: "Home", Address: "Jl. Merdeka 1"}
				profileServiceMock.EXPECT().CreateAddress(gomock.Any(), expected).
					Return(&models.Address{ID: 1, UserID: customer.ID, Label: "Home", Address: "Jl. Merdeka 1", IsDefault: true}, nil)
			},
			body:         jsonBody(models.Address{Label: "Home", Address: "Jl. Merdeka 1"}),
			expectedCode: http.StatusCreated,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Contains(t, body, `"is_default":true`)
			},
		},
		{
			testName:   "Should answer 404 for a missing address",
			methodName: "DELETE",
			targetURL:  "/api/profile/addresses/9",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				profileServiceMock.EXPECT().DeleteAddress(gomock.Any(), customer.ID, int64(9)).Return(services.ErrAddressNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			testName:   "Should list saved cards",
			methodName: "GET",
			targetURL:  "/api/profile/cards",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				profileServiceMock.EXPECT().ListSavedCards(gomock.Any(), customer.ID).
					Return([]models.SavedCard{{ID: 3, CardType: "credit", Bank: "bni", MaskedNumber: "481111-1114"}}, nil)
			},
			expectedCode: http.StatusOK,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Contains(t, body, `"masked_number":"481111-1114"`)
				assert.NotContains(t, body, `"token"`)
			},
		},
		{
			testName:   "Should save a card token without echoing it",
			methodName: "POST",
			targetURL:  "/api/profile/cards",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				expected := models.SavedCard{UserID: customer.ID, CardType: "credit", MaskedNumber: "481111-1114", Token: "481111-1114-abc"}
				profileServiceMock.EXPECT().SaveCard(gomock.Any(), expected).
					Return(&models.SavedCard{ID: 4, UserID: customer.ID, CardType: "credit", MaskedNumber: "481111-1114"}, nil)
			},
			body:         jsonBody(models.SavedCard{CardType: "credit", MaskedNumber: "481111-1114", Token: "481111-1114-abc"}),
			expectedCode: http.StatusCreated,
			testResponse: func(t *testing.T, res *http.Response, body string) {
				assert.Contains(t, body, `"id":4`)
				assert.NotContains(t, body, "481111-1114-abc")
			},
		},
		{
			testName:   "Should reject a card number that is not masked",
			methodName: "POST",
			targetURL:  "/api/profile/cards",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				profileServiceMock.EXPECT().SaveCard(gomock.Any(), gomock.Any()).Return(nil, services.ErrInvalidCard)
			},
			body:         jsonBody(models.SavedCard{MaskedNumber: "4811111111111114", Token: "tok"}),
			expectedCode: http.StatusBadRequest,
		},
		{
			testName:   "Should answer 404 for a missing card",
			methodName: "DELETE",
			targetURL:  "/api/profile/cards/7",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				profileServiceMock.EXPECT().DeleteSavedCard(gomock.Any(), customer.ID, int64(7)).Return(services.ErrSavedCardNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			testName:   "Should mark notifications as read",
			methodName: "POST",
			targetURL:  "/api/notifications/read",
			test: func(t *testing.T) {
				expectUser(jwtServiceMock, authServiceMock, customer)
				notificationServiceMock.EXPECT().MarkAllRead(gomock.Any(), customer.ID).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
	})
}

func TestStreamOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)
	orderServiceMock := mock_models.NewMockOrderService(ctrl)
	hub := realtime.NewHub()

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{Auth: authServiceMock, JWT: jwtServiceMock, Order: orderServiceMock}, hub).get(),
	)
	defer testServer.Close()

	order := models.Order{ID: 7, UserID: customer.ID, Status: models.StatusReadyForPickup}
	expectUser(jwtServiceMock, authServiceMock, customer)
	orderServiceMock.EXPECT().GetOrder(gomock.Any(), customer.Actor(), int64(7)).Return(&order, nil)

	url := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/api/orders/7/live?access_token=token"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var snapshot models.Order
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, models.StatusReadyForPickup, snapshot.Status)

	require.Eventually(t, func() bool {
		return hub.Subscribers(realtime.OrderTopic(7)) == 1
	}, time.Second, 10*time.Millisecond)

	status := models.StatusOutForDelivery
	prev := models.StatusReadyForPickup
	require.NoError(t, hub.Publish(context.Background(), models.OrderUpdate{
		OrderID:    7,
		Status:     &status,
		PrevStatus: &prev,
		DriverID:   ptr(driver.ID),
		UpdatedAt:  time.Now(),
	}))

	var update models.OrderUpdate
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&update))

	require.True(t, snapshot.Apply(update))
	assert.Equal(t, models.StatusOutForDelivery, snapshot.Status)
	assert.Equal(t, driver.ID, *snapshot.DriverID)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return hub.Subscribers(realtime.OrderTopic(7)) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStreamOrderClosesForOutbidDriver(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)
	orderServiceMock := mock_models.NewMockOrderService(ctrl)
	hub := realtime.NewHub()

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{Auth: authServiceMock, JWT: jwtServiceMock, Order: orderServiceMock}, hub).get(),
	)
	defer testServer.Close()

	order := models.Order{ID: 7, UserID: customer.ID, Status: models.StatusReadyForPickup}
	expectUser(jwtServiceMock, authServiceMock, driver)
	orderServiceMock.EXPECT().GetOrder(gomock.Any(), driver.Actor(), int64(7)).Return(&order, nil)

	url := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/api/orders/7/live?access_token=token"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var snapshot models.Order
	require.NoError(t, conn.ReadJSON(&snapshot))

	require.Eventually(t, func() bool {
		return hub.Subscribers(realtime.OrderTopic(7)) == 1
	}, time.Second, 10*time.Millisecond)

	status := models.StatusOutForDelivery
	prev := models.StatusReadyForPickup
	require.NoError(t, hub.Publish(context.Background(), models.OrderUpdate{
		OrderID:    7,
		Status:     &status,
		PrevStatus: &prev,
		DriverID:   ptr("other-driver-id"),
		UpdatedAt:  time.Now(),
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var update models.OrderUpdate
	err = conn.ReadJSON(&update)
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "unexpected error: %v", err)
	assert.Nil(t, update.DriverID)

	assert.Eventually(t, func() bool {
		return hub.Subscribers(realtime.OrderTopic(7)) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStreamOrderHidesForeignOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)
	orderServiceMock := mock_models.NewMockOrderService(ctrl)

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{Auth: authServiceMock, JWT: jwtServiceMock, Order: orderServiceMock}, realtime.NewHub()).get(),
	)
	defer testServer.Close()

	expectUser(jwtServiceMock, authServiceMock, driver)
	orderServiceMock.EXPECT().GetOrder(gomock.Any(), driver.Actor(), int64(7)).Return(nil, services.ErrOrderNotFound)

	res, _ := utils.TestRequest(t, testServer, "GET", "/api/orders/7/live", authHeaders, nil)
	res.Body.Close()

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestStreamStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	authServiceMock := mock_models.NewMockAuthService(ctrl)
	jwtServiceMock := mock_models.NewMockJWTService(ctrl)
	hub := realtime.NewHub()

	testServer := httptest.NewServer(
		New(Config{}, middlewares.Services{Auth: authServiceMock, JWT: jwtServiceMock}, hub).get(),
	)
	defer testServer.Close()

	t.Run("Should reject an unknown status", func(t *testing.T) {
		expectUser(jwtServiceMock, authServiceMock, driver)

		res, mes := utils.TestRequest(t, testServer, "GET", "/api/orders/live?status=lost", authHeaders, nil)
		res.Body.Close()

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "Unknown status \"lost\"\n", mes)
	})

	t.Run("Should not stream to customers", func(t *testing.T) {
		expectUser(jwtServiceMock, authServiceMock, customer)

		res, _ := utils.TestRequest(t, testServer, "GET", "/api/orders/live?status=ready_for_pickup", authHeaders, nil)
		res.Body.Close()

		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("Should stream orders leaving the ready pool", func(t *testing.T) {
		expectUser(jwtServiceMock, authServiceMock, driver)

		url := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/api/orders/live?status=ready_for_pickup&access_token=token"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()

		topic := realtime.StatusTopic(models.StatusReadyForPickup)
		require.Eventually(t, func() bool { return hub.Subscribers(topic) == 1 }, time.Second, 10*time.Millisecond)

		status := models.StatusOutForDelivery
		prev := models.StatusReadyForPickup
		require.NoError(t, hub.Publish(context.Background(), models.OrderUpdate{OrderID: 3, Status: &status, PrevStatus: &prev}))

		var update models.OrderUpdate
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, conn.ReadJSON(&update))
		assert.Equal(t, int64(3), update.OrderID)
		assert.Equal(t, models.StatusOutForDelivery, *update.Status)
	})
}

func ptr[T any](v T) *T {
	return &v
}
