package transferrequest

type CreatedEvent struct {
	Request TransferRequest
	ActorID uint
}

type ResolvedEvent struct {
	Request TransferRequest
	ActorID uint
}
