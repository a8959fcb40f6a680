package dashboard_mocks

//go:generate mockgen -source=../interfaces.go -destination=dashboard_mocks.go -package=dashboard_mocks
