package service_mocks

//go:generate mockgen -source=../interfaces.go -destination=service_mocks.go -package=service_mocks -mock_names=AccountServiceInterface=MockAccountServiceInterface
