package packet

// Client -> server opcodes.
const (
	C_OPCODE_VERSION  byte = 1
	C_OPCODE_LOGIN    byte = 2
	C_OPCODE_JOIN     byte = 3
	C_OPCODE_INPUT    byte = 4
	C_OPCODE_SOFTDROP byte = 5
	C_OPCODE_ALIVE    byte = 6
	C_OPCODE_QUIT     byte = 7
)

// Server -> client opcodes.
const (
	S_OPCODE_HELLO        byte = 150
	S_OPCODE_LOGIN_RESULT byte = 151
	S_OPCODE_JOINED       byte = 152
	S_OPCODE_SNAPSHOT     byte = 153
	S_OPCODE_CLEAR_EVENT  byte = 154
	S_OPCODE_LEVEL_UP     byte = 155
	S_OPCODE_GAME_OVER    byte = 156
	S_OPCODE_ANNOUNCE     byte = 157
)

// ProtocolVersion is bumped on every wire-incompatible change. The version
// handshake rejects clients that do not match exactly.
const ProtocolVersion = 1
