package main

import (
	"crypto/rand"
	"fmt"

	"github.com/FractionEstate/Cardano-KES/kes"
	"github.com/FractionEstate/Cardano-KES/vrf/ietfdraft03"
)

func rng(n int) []byte {
	var b = make([]byte, n)
	rand.Read(b)
	return b
}

func hex(s []byte) string {
	return fmt.Sprintf("%x", s)
}

func echo(label string, value interface{}) {
	fmt.Println(label, value)
}

func demoKes() {
	fmt.Println("\nKES: evolve a Sum6 key (64 periods) through its first periods")

	var ctx kes.Context
	var seed = rng(kes.Sum6.SeedSize())
	echo("  seed       :", hex(seed))

	sk, err := kes.Sum6.GenKeyFromSeed(seed)
	if err != nil {
		panic(err)
	}
	vk, err := kes.Sum6.DeriveVerificationKey(sk)
	if err != nil {
		panic(err)
	}
	echo("  vk         :", hex(vk))

	for period := kes.Period(0); period < 4; period++ {
		var message = []byte(fmt.Sprintf("block at period %d", period))

		sig, err := kes.Sum6.Sign(ctx, period, message, sk)
		if err != nil {
			panic(err)
		}
		valid := kes.Sum6.Verify(ctx, vk, period, message, sig) == nil
		echo(fmt.Sprintf("  period %d   :", period), fmt.Sprintf("sig %s... valid=%v", hex(sig[:16]), valid))

		sk, err = kes.Sum6.Update(ctx, sk, period)
		if err != nil {
			panic(err)
		}
	}

	kes.ForgetSigningKey(sk)
	fmt.Println("")
}

func demoVrf() {
	fmt.Println("\nVRF: draft-03 prove and verify")

	var seed = rng(ietfdraft03.SeedSize)
	sk, pk, err := ietfdraft03.KeyPairFromSeed(seed)
	if err != nil {
		panic(err)
	}
	echo("  public     :", hex(pk))

	var alpha = rng(16)
	echo("  alpha      :", hex(alpha))

	pi, err := ietfdraft03.Prove(sk, alpha)
	if err != nil {
		panic(err)
	}
	echo("  proof      :", hex(pi))

	beta, err := ietfdraft03.Verify(pk, pi, alpha)
	echo("  output     :", hex(beta))
	echo("  valid?     :", err == nil)

	fmt.Println("")
}

func main() {
	demoKes()
	demoVrf()
}
