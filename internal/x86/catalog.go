// Copyright 2024 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package x86

import (
	"sync"
)

// DefaultCatalog returns the catalog of
// instruction forms supported by the
// assembler. The result is shared and
// must not be modified.
var DefaultCatalog = sync.OnceValue(func() Catalog {
	c, err := ParseCatalog(catalogText)
	if err != nil {
		panic("invalid instruction catalog: " + err.Error())
	}

	return c
})

// catalogText lists the instruction forms,
// one per line, as "<expression>, <encoding>".
//
// Where several forms could match the same
// operands, the first one listed is used,
// so shorter encodings come first. Memory
// operands with no size suffix match the
// first form with a memory operand, which
// is ordered to be the 32-bit form.
//
// See Intel x86 manuals, Volume 2, chapters
// 3 to 5 for the encodings.
const catalogText = `
// Arithmetic and logic.
ADD reg/mem32 imm8, 83 /0 ib
ADD reg/mem64 imm8, 83 /0 ib
ADD reg/mem16 imm8, 83 /0 ib
ADD AL imm8, 04 ib
ADD AX imm16, 05 iw
ADD EAX imm32, 05 id
ADD RAX imm32, 05 id
ADD reg/mem32 imm32, 81 /0 id
ADD reg/mem64 imm32, 81 /0 id
ADD reg/mem16 imm16, 81 /0 iw
ADD reg/mem8 imm8, 80 /0 ib
ADD reg/mem32 reg32, 01 /r
ADD reg/mem64 reg64, 01 /r
ADD reg/mem16 reg16, 01 /r
ADD reg/mem8 reg8, 00 /r
ADD reg32 reg/mem32, 03 /r
ADD reg64 reg/mem64, 03 /r
ADD reg16 reg/mem16, 03 /r
ADD reg8 reg/mem8, 02 /r

OR reg/mem32 imm8, 83 /1 ib
OR reg/mem64 imm8, 83 /1 ib
OR reg/mem16 imm8, 83 /1 ib
OR AL imm8, 0C ib
OR AX imm16, 0D iw
OR EAX imm32, 0D id
OR RAX imm32, 0D id
OR reg/mem32 imm32, 81 /1 id
OR reg/mem64 imm32, 81 /1 id
OR reg/mem16 imm16, 81 /1 iw
OR reg/mem8 imm8, 80 /1 ib
OR reg/mem32 reg32, 09 /r
OR reg/mem64 reg64, 09 /r
OR reg/mem16 reg16, 09 /r
OR reg/mem8 reg8, 08 /r
OR reg32 reg/mem32, 0B /r
OR reg64 reg/mem64, 0B /r
OR reg16 reg/mem16, 0B /r
OR reg8 reg/mem8, 0A /r

ADC reg/mem32 imm8, 83 /2 ib
ADC reg/mem64 imm8, 83 /2 ib
ADC reg/mem16 imm8, 83 /2 ib
ADC AL imm8, 14 ib
ADC AX imm16, 15 iw
ADC EAX imm32, 15 id
ADC RAX imm32, 15 id
ADC reg/mem32 imm32, 81 /2 id
ADC reg/mem64 imm32, 81 /2 id
ADC reg/mem16 imm16, 81 /2 iw
ADC reg/mem8 imm8, 80 /2 ib
ADC reg/mem32 reg32, 11 /r
ADC reg/mem64 reg64, 11 /r
ADC reg/mem16 reg16, 11 /r
ADC reg/mem8 reg8, 10 /r
ADC reg32 reg/mem32, 13 /r
ADC reg64 reg/mem64, 13 /r
ADC reg16 reg/mem16, 13 /r
ADC reg8 reg/mem8, 12 /r

SBB reg/mem32 imm8, 83 /3 ib
SBB reg/mem64 imm8, 83 /3 ib
SBB reg/mem16 imm8, 83 /3 ib
SBB AL imm8, 1C ib
SBB AX imm16, 1D iw
SBB EAX imm32, 1D id
SBB RAX imm32, 1D id
SBB reg/mem32 imm32, 81 /3 id
SBB reg/mem64 imm32, 81 /3 id
SBB reg/mem16 imm16, 81 /3 iw
SBB reg/mem8 imm8, 80 /3 ib
SBB reg/mem32 reg32, 19 /r
SBB reg/mem64 reg64, 19 /r
SBB reg/mem16 reg16, 19 /r
SBB reg/mem8 reg8, 18 /r
SBB reg32 reg/mem32, 1B /r
SBB reg64 reg/mem64, 1B /r
SBB reg16 reg/mem16, 1B /r
SBB reg8 reg/mem8, 1A /r

AND reg/mem32 imm8, 83 /4 ib
AND reg/mem64 imm8, 83 /4 ib
AND reg/mem16 imm8, 83 /4 ib
AND AL imm8, 24 ib
AND AX imm16, 25 iw
AND EAX imm32, 25 id
AND RAX imm32, 25 id
AND reg/mem32 imm32, 81 /4 id
AND reg/mem64 imm32, 81 /4 id
AND reg/mem16 imm16, 81 /4 iw
AND reg/mem8 imm8, 80 /4 ib
AND reg/mem32 reg32, 21 /r
AND reg/mem64 reg64, 21 /r
AND reg/mem16 reg16, 21 /r
AND reg/mem8 reg8, 20 /r
AND reg32 reg/mem32, 23 /r
AND reg64 reg/mem64, 23 /r
AND reg16 reg/mem16, 23 /r
AND reg8 reg/mem8, 22 /r

SUB reg/mem32 imm8, 83 /5 ib
SUB reg/mem64 imm8, 83 /5 ib
SUB reg/mem16 imm8, 83 /5 ib
SUB AL imm8, 2C ib
SUB AX imm16, 2D iw
SUB EAX imm32, 2D id
SUB RAX imm32, 2D id
SUB reg/mem32 imm32, 81 /5 id
SUB reg/mem64 imm32, 81 /5 id
SUB reg/mem16 imm16, 81 /5 iw
SUB reg/mem8 imm8, 80 /5 ib
SUB reg/mem32 reg32, 29 /r
SUB reg/mem64 reg64, 29 /r
SUB reg/mem16 reg16, 29 /r
SUB reg/mem8 reg8, 28 /r
SUB reg32 reg/mem32, 2B /r
SUB reg64 reg/mem64, 2B /r
SUB reg16 reg/mem16, 2B /r
SUB reg8 reg/mem8, 2A /r

XOR reg/mem32 imm8, 83 /6 ib
XOR reg/mem64 imm8, 83 /6 ib
XOR reg/mem16 imm8, 83 /6 ib
XOR AL imm8, 34 ib
XOR AX imm16, 35 iw
XOR EAX imm32, 35 id
XOR RAX imm32, 35 id
XOR reg/mem32 imm32, 81 /6 id
XOR reg/mem64 imm32, 81 /6 id
XOR reg/mem16 imm16, 81 /6 iw
XOR reg/mem8 imm8, 80 /6 ib
XOR reg/mem32 reg32, 31 /r
XOR reg/mem64 reg64, 31 /r
XOR reg/mem16 reg16, 31 /r
XOR reg/mem8 reg8, 30 /r
XOR reg32 reg/mem32, 33 /r
XOR reg64 reg/mem64, 33 /r
XOR reg16 reg/mem16, 33 /r
XOR reg8 reg/mem8, 32 /r

CMP reg/mem32 imm8, 83 /7 ib
CMP reg/mem64 imm8, 83 /7 ib
CMP reg/mem16 imm8, 83 /7 ib
CMP AL imm8, 3C ib
CMP AX imm16, 3D iw
CMP EAX imm32, 3D id
CMP RAX imm32, 3D id
CMP reg/mem32 imm32, 81 /7 id
CMP reg/mem64 imm32, 81 /7 id
CMP reg/mem16 imm16, 81 /7 iw
CMP reg/mem8 imm8, 80 /7 ib
CMP reg/mem32 reg32, 39 /r
CMP reg/mem64 reg64, 39 /r
CMP reg/mem16 reg16, 39 /r
CMP reg/mem8 reg8, 38 /r
CMP reg32 reg/mem32, 3B /r
CMP reg64 reg/mem64, 3B /r
CMP reg16 reg/mem16, 3B /r
CMP reg8 reg/mem8, 3A /r

// Unary arithmetic.
NOT reg/mem32, F7 /2
NOT reg/mem64, F7 /2
NOT reg/mem16, F7 /2
NOT reg/mem8, F6 /2
NEG reg/mem32, F7 /3
NEG reg/mem64, F7 /3
NEG reg/mem16, F7 /3
NEG reg/mem8, F6 /3
MUL reg/mem32, F7 /4
MUL reg/mem64, F7 /4
MUL reg/mem16, F7 /4
MUL reg/mem8, F6 /4
IMUL reg/mem32, F7 /5
IMUL reg/mem64, F7 /5
IMUL reg/mem16, F7 /5
IMUL reg/mem8, F6 /5
DIV reg/mem32, F7 /6
DIV reg/mem64, F7 /6
DIV reg/mem16, F7 /6
DIV reg/mem8, F6 /6
IDIV reg/mem32, F7 /7
IDIV reg/mem64, F7 /7
IDIV reg/mem16, F7 /7
IDIV reg/mem8, F6 /7
INC reg/mem32, FF /0
INC reg/mem64, FF /0
INC reg/mem16, FF /0
INC reg/mem8, FE /0
DEC reg/mem32, FF /1
DEC reg/mem64, FF /1
DEC reg/mem16, FF /1
DEC reg/mem8, FE /1
IMUL reg32 reg/mem32, 0F AF /r
IMUL reg64 reg/mem64, 0F AF /r
IMUL reg16 reg/mem16, 0F AF /r

// Tests.
TEST AL imm8, A8 ib
TEST AX imm16, A9 iw
TEST EAX imm32, A9 id
TEST RAX imm32, A9 id
TEST reg/mem32 imm32, F7 /0 id
TEST reg/mem64 imm32, F7 /0 id
TEST reg/mem16 imm16, F7 /0 iw
TEST reg/mem8 imm8, F6 /0 ib
TEST reg/mem32 reg32, 85 /r
TEST reg/mem64 reg64, 85 /r
TEST reg/mem16 reg16, 85 /r
TEST reg/mem8 reg8, 84 /r

// Shifts and rotates.
ROL reg/mem32 imm8, C1 /0 ib
ROL reg/mem64 imm8, C1 /0 ib
ROL reg/mem16 imm8, C1 /0 ib
ROL reg/mem8 imm8, C0 /0 ib
ROL reg/mem32 CL, D3 /0
ROL reg/mem64 CL, D3 /0
ROL reg/mem16 CL, D3 /0
ROL reg/mem8 CL, D2 /0
ROR reg/mem32 imm8, C1 /1 ib
ROR reg/mem64 imm8, C1 /1 ib
ROR reg/mem16 imm8, C1 /1 ib
ROR reg/mem8 imm8, C0 /1 ib
ROR reg/mem32 CL, D3 /1
ROR reg/mem64 CL, D3 /1
ROR reg/mem16 CL, D3 /1
ROR reg/mem8 CL, D2 /1
RCL reg/mem32 imm8, C1 /2 ib
RCL reg/mem64 imm8, C1 /2 ib
RCL reg/mem16 imm8, C1 /2 ib
RCL reg/mem8 imm8, C0 /2 ib
RCL reg/mem32 CL, D3 /2
RCL reg/mem64 CL, D3 /2
RCL reg/mem16 CL, D3 /2
RCL reg/mem8 CL, D2 /2
RCR reg/mem32 imm8, C1 /3 ib
RCR reg/mem64 imm8, C1 /3 ib
RCR reg/mem16 imm8, C1 /3 ib
RCR reg/mem8 imm8, C0 /3 ib
RCR reg/mem32 CL, D3 /3
RCR reg/mem64 CL, D3 /3
RCR reg/mem16 CL, D3 /3
RCR reg/mem8 CL, D2 /3
SHL reg/mem32 imm8, C1 /4 ib
SHL reg/mem64 imm8, C1 /4 ib
SHL reg/mem16 imm8, C1 /4 ib
SHL reg/mem8 imm8, C0 /4 ib
SHL reg/mem32 CL, D3 /4
SHL reg/mem64 CL, D3 /4
SHL reg/mem16 CL, D3 /4
SHL reg/mem8 CL, D2 /4
SAL reg/mem32 imm8, C1 /4 ib
SAL reg/mem64 imm8, C1 /4 ib
SAL reg/mem16 imm8, C1 /4 ib
SAL reg/mem8 imm8, C0 /4 ib
SAL reg/mem32 CL, D3 /4
SAL reg/mem64 CL, D3 /4
SAL reg/mem16 CL, D3 /4
SAL reg/mem8 CL, D2 /4
SHR reg/mem32 imm8, C1 /5 ib
SHR reg/mem64 imm8, C1 /5 ib
SHR reg/mem16 imm8, C1 /5 ib
SHR reg/mem8 imm8, C0 /5 ib
SHR reg/mem32 CL, D3 /5
SHR reg/mem64 CL, D3 /5
SHR reg/mem16 CL, D3 /5
SHR reg/mem8 CL, D2 /5
SAR reg/mem32 imm8, C1 /7 ib
SAR reg/mem64 imm8, C1 /7 ib
SAR reg/mem16 imm8, C1 /7 ib
SAR reg/mem8 imm8, C0 /7 ib
SAR reg/mem32 CL, D3 /7
SAR reg/mem64 CL, D3 /7
SAR reg/mem16 CL, D3 /7
SAR reg/mem8 CL, D2 /7

// Data movement.
MOV reg/mem32 reg32, 89 /r
MOV reg/mem64 reg64, 89 /r
MOV reg/mem16 reg16, 89 /r
MOV reg/mem8 reg8, 88 /r
MOV reg32 reg/mem32, 8B /r
MOV reg64 reg/mem64, 8B /r
MOV reg16 reg/mem16, 8B /r
MOV reg8 reg/mem8, 8A /r
MOV reg32 imm32, B8 +rd id
MOV reg/mem32 imm32, C7 /0 id
MOV reg/mem64 imm32, C7 /0 id
MOV reg64 imm64, B8 +rq iq
MOV reg16 imm16, B8 +rw iw
MOV reg8 imm8, B0 +rb ib
MOV reg/mem16 imm16, C7 /0 iw
MOV reg/mem8 imm8, C6 /0 ib
MOVZX reg32 reg/mem8, 0F B6 /r
MOVZX reg64 reg/mem8, 0F B6 /r
MOVZX reg16 reg/mem8, 0F B6 /r
MOVZX reg32 reg/mem16, 0F B7 /r
MOVZX reg64 reg/mem16, 0F B7 /r
MOVSX reg32 reg/mem8, 0F BE /r
MOVSX reg64 reg/mem8, 0F BE /r
MOVSX reg16 reg/mem8, 0F BE /r
MOVSX reg32 reg/mem16, 0F BF /r
MOVSX reg64 reg/mem16, 0F BF /r
MOVSXD reg64 reg/mem32, 63 /r
LEA reg64 mem, 8D /r
LEA reg32 mem, 8D /r
LEA reg16 mem, 8D /r
XCHG reg/mem32 reg32, 87 /r
XCHG reg/mem64 reg64, 87 /r
XCHG reg/mem16 reg16, 87 /r
XCHG reg/mem8 reg8, 86 /r
XCHG reg32 reg/mem32, 87 /r
XCHG reg64 reg/mem64, 87 /r
XCHG reg16 reg/mem16, 87 /r
XCHG reg8 reg/mem8, 86 /r
BSWAP reg32, 0F C8 +rd
BSWAP reg64, 0F C8 +rq
BSF reg32 reg/mem32, 0F BC /r
BSF reg64 reg/mem64, 0F BC /r
BSF reg16 reg/mem16, 0F BC /r
BSR reg32 reg/mem32, 0F BD /r
BSR reg64 reg/mem64, 0F BD /r
BSR reg16 reg/mem16, 0F BD /r

// Conditional moves and sets.
CMOVO reg32 reg/mem32, 0F 40 /r
CMOVO reg64 reg/mem64, 0F 40 /r
CMOVO reg16 reg/mem16, 0F 40 /r
CMOVNO reg32 reg/mem32, 0F 41 /r
CMOVNO reg64 reg/mem64, 0F 41 /r
CMOVNO reg16 reg/mem16, 0F 41 /r
CMOVB reg32 reg/mem32, 0F 42 /r
CMOVB reg64 reg/mem64, 0F 42 /r
CMOVB reg16 reg/mem16, 0F 42 /r
CMOVC reg32 reg/mem32, 0F 42 /r
CMOVC reg64 reg/mem64, 0F 42 /r
CMOVC reg16 reg/mem16, 0F 42 /r
CMOVNAE reg32 reg/mem32, 0F 42 /r
CMOVNAE reg64 reg/mem64, 0F 42 /r
CMOVNAE reg16 reg/mem16, 0F 42 /r
CMOVAE reg32 reg/mem32, 0F 43 /r
CMOVAE reg64 reg/mem64, 0F 43 /r
CMOVAE reg16 reg/mem16, 0F 43 /r
CMOVNB reg32 reg/mem32, 0F 43 /r
CMOVNB reg64 reg/mem64, 0F 43 /r
CMOVNB reg16 reg/mem16, 0F 43 /r
CMOVNC reg32 reg/mem32, 0F 43 /r
CMOVNC reg64 reg/mem64, 0F 43 /r
CMOVNC reg16 reg/mem16, 0F 43 /r
CMOVE reg32 reg/mem32, 0F 44 /r
CMOVE reg64 reg/mem64, 0F 44 /r
CMOVE reg16 reg/mem16, 0F 44 /r
CMOVZ reg32 reg/mem32, 0F 44 /r
CMOVZ reg64 reg/mem64, 0F 44 /r
CMOVZ reg16 reg/mem16, 0F 44 /r
CMOVNE reg32 reg/mem32, 0F 45 /r
CMOVNE reg64 reg/mem64, 0F 45 /r
CMOVNE reg16 reg/mem16, 0F 45 /r
CMOVNZ reg32 reg/mem32, 0F 45 /r
CMOVNZ reg64 reg/mem64, 0F 45 /r
CMOVNZ reg16 reg/mem16, 0F 45 /r
CMOVBE reg32 reg/mem32, 0F 46 /r
CMOVBE reg64 reg/mem64, 0F 46 /r
CMOVBE reg16 reg/mem16, 0F 46 /r
CMOVNA reg32 reg/mem32, 0F 46 /r
CMOVNA reg64 reg/mem64, 0F 46 /r
CMOVNA reg16 reg/mem16, 0F 46 /r
CMOVA reg32 reg/mem32, 0F 47 /r
CMOVA reg64 reg/mem64, 0F 47 /r
CMOVA reg16 reg/mem16, 0F 47 /r
CMOVNBE reg32 reg/mem32, 0F 47 /r
CMOVNBE reg64 reg/mem64, 0F 47 /r
CMOVNBE reg16 reg/mem16, 0F 47 /r
CMOVS reg32 reg/mem32, 0F 48 /r
CMOVS reg64 reg/mem64, 0F 48 /r
CMOVS reg16 reg/mem16, 0F 48 /r
CMOVNS reg32 reg/mem32, 0F 49 /r
CMOVNS reg64 reg/mem64, 0F 49 /r
CMOVNS reg16 reg/mem16, 0F 49 /r
CMOVP reg32 reg/mem32, 0F 4A /r
CMOVP reg64 reg/mem64, 0F 4A /r
CMOVP reg16 reg/mem16, 0F 4A /r
CMOVPE reg32 reg/mem32, 0F 4A /r
CMOVPE reg64 reg/mem64, 0F 4A /r
CMOVPE reg16 reg/mem16, 0F 4A /r
CMOVNP reg32 reg/mem32, 0F 4B /r
CMOVNP reg64 reg/mem64, 0F 4B /r
CMOVNP reg16 reg/mem16, 0F 4B /r
CMOVPO reg32 reg/mem32, 0F 4B /r
CMOVPO reg64 reg/mem64, 0F 4B /r
CMOVPO reg16 reg/mem16, 0F 4B /r
CMOVL reg32 reg/mem32, 0F 4C /r
CMOVL reg64 reg/mem64, 0F 4C /r
CMOVL reg16 reg/mem16, 0F 4C /r
CMOVNGE reg32 reg/mem32, 0F 4C /r
CMOVNGE reg64 reg/mem64, 0F 4C /r
CMOVNGE reg16 reg/mem16, 0F 4C /r
CMOVGE reg32 reg/mem32, 0F 4D /r
CMOVGE reg64 reg/mem64, 0F 4D /r
CMOVGE reg16 reg/mem16, 0F 4D /r
CMOVNL reg32 reg/mem32, 0F 4D /r
CMOVNL reg64 reg/mem64, 0F 4D /r
CMOVNL reg16 reg/mem16, 0F 4D /r
CMOVLE reg32 reg/mem32, 0F 4E /r
CMOVLE reg64 reg/mem64, 0F 4E /r
CMOVLE reg16 reg/mem16, 0F 4E /r
CMOVNG reg32 reg/mem32, 0F 4E /r
CMOVNG reg64 reg/mem64, 0F 4E /r
CMOVNG reg16 reg/mem16, 0F 4E /r
CMOVG reg32 reg/mem32, 0F 4F /r
CMOVG reg64 reg/mem64, 0F 4F /r
CMOVG reg16 reg/mem16, 0F 4F /r
CMOVNLE reg32 reg/mem32, 0F 4F /r
CMOVNLE reg64 reg/mem64, 0F 4F /r
CMOVNLE reg16 reg/mem16, 0F 4F /r
SETO reg/mem8, 0F 90 /0
SETNO reg/mem8, 0F 91 /0
SETB reg/mem8, 0F 92 /0
SETC reg/mem8, 0F 92 /0
SETNAE reg/mem8, 0F 92 /0
SETAE reg/mem8, 0F 93 /0
SETNB reg/mem8, 0F 93 /0
SETNC reg/mem8, 0F 93 /0
SETE reg/mem8, 0F 94 /0
SETZ reg/mem8, 0F 94 /0
SETNE reg/mem8, 0F 95 /0
SETNZ reg/mem8, 0F 95 /0
SETBE reg/mem8, 0F 96 /0
SETNA reg/mem8, 0F 96 /0
SETA reg/mem8, 0F 97 /0
SETNBE reg/mem8, 0F 97 /0
SETS reg/mem8, 0F 98 /0
SETNS reg/mem8, 0F 99 /0
SETP reg/mem8, 0F 9A /0
SETPE reg/mem8, 0F 9A /0
SETNP reg/mem8, 0F 9B /0
SETPO reg/mem8, 0F 9B /0
SETL reg/mem8, 0F 9C /0
SETNGE reg/mem8, 0F 9C /0
SETGE reg/mem8, 0F 9D /0
SETNL reg/mem8, 0F 9D /0
SETLE reg/mem8, 0F 9E /0
SETNG reg/mem8, 0F 9E /0
SETG reg/mem8, 0F 9F /0
SETNLE reg/mem8, 0F 9F /0

// Stack.
PUSH reg64, 50 +rq oq
PUSH reg16, 50 +rw oq
PUSH reg/mem64, FF /6 oq
PUSH reg/mem16, FF /6 oq
PUSH imm8, 6A ib oq
PUSH imm32, 68 id oq
POP reg64, 58 +rq oq
POP reg16, 58 +rw oq
POP reg/mem64, 8F /0 oq
POP reg/mem16, 8F /0 oq
LEAVE, C9

// Control flow.
CALL rel32off, E8 cd
CALL reg/mem64, FF /2 oq
JMP rel32off, E9 cd
JMP reg/mem64, FF /4 oq
JO rel32off, 0F 80 cd
JNO rel32off, 0F 81 cd
JB rel32off, 0F 82 cd
JC rel32off, 0F 82 cd
JNAE rel32off, 0F 82 cd
JAE rel32off, 0F 83 cd
JNB rel32off, 0F 83 cd
JNC rel32off, 0F 83 cd
JE rel32off, 0F 84 cd
JZ rel32off, 0F 84 cd
JNE rel32off, 0F 85 cd
JNZ rel32off, 0F 85 cd
JBE rel32off, 0F 86 cd
JNA rel32off, 0F 86 cd
JA rel32off, 0F 87 cd
JNBE rel32off, 0F 87 cd
JS rel32off, 0F 88 cd
JNS rel32off, 0F 89 cd
JP rel32off, 0F 8A cd
JPE rel32off, 0F 8A cd
JNP rel32off, 0F 8B cd
JPO rel32off, 0F 8B cd
JL rel32off, 0F 8C cd
JNGE rel32off, 0F 8C cd
JGE rel32off, 0F 8D cd
JNL rel32off, 0F 8D cd
JLE rel32off, 0F 8E cd
JNG rel32off, 0F 8E cd
JG rel32off, 0F 8F cd
JNLE rel32off, 0F 8F cd
JRCXZ rel8off, E3 cb
LOOP rel8off, E2 cb
LOOPE rel8off, E1 cb
LOOPNE rel8off, E0 cb
RET, C3
RET imm16, C2 iw

// Ports. Immediate port numbers are only
// listed with AL, as a wider accumulator
// would make imm8 look sign-extended.
IN AL imm8, E4 ib
IN AL DX, EC
IN AX DX, ED
IN EAX DX, ED
OUT imm8 AL, E6 ib
OUT DX AL, EE
OUT DX AX, EF
OUT DX EAX, EF

// Miscellaneous. Size-specific forms with
// no operands carry their 66 or REX.W byte
// in the opcode.
NOP, 90
HLT, F4
INT3, CC
INT imm8, CD ib
SYSCALL, 0F 05
CPUID, 0F A2
CWD, 66 99
CDQ, 99
CQO, 48 99
CBW, 66 98
CWDE, 98
CDQE, 48 98
CLC, F8
STC, F9
CLD, FC
STD, FD
PAUSE, F3 90
UD2, 0F 0B
`
