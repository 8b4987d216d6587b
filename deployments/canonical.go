package deployments

import (
	"fmt"

	chainsel "github.com/smartcontractkit/chain-selectors"

	"github.com/smartcontractkit/safe-adapters/contracts"
)

// canonical holds the singleton factory deployments shared by EVM chains.
var canonical = map[string]map[contracts.ContractType]string{
	"1.3.0": {
		contracts.Safe:                         "0xd9Db270c1B5E3Bd161E8c8503c55cEABeE709552",
		contracts.SafeL2:                       "0x3E5c63644E683549055b9Be8653de26E0B4CD36E",
		contracts.SafeProxyFactory:             "0xa6B71E26C5e0845f74c812102Ca7114b6a896AB2",
		contracts.MultiSend:                    "0xA238CBeb142c10Ef7Ad8442C6D1f9E89e07e7761",
		contracts.MultiSendCallOnly:            "0x40A2aCCbd92BCA938b02010E17A5b8929b49130D",
		contracts.CompatibilityFallbackHandler: "0xf48f2B2d2a534e402487b3ee7C18c33Aec0Fe5e4",
		contracts.SignMessageLib:               "0xA65387F16B013cf2Af4605Ad8aA5ec25a2cbA3a2",
		contracts.CreateCall:                   "0x7cbB62EaA69F79e6873cD1ecB2392971036cFAa4",
		contracts.SimulateTxAccessor:           "0x59AD6735bCd8152B84860Cb256dD9e96b85F69Da",
	},
	"1.4.1": {
		contracts.Safe:                         "0x41675C099F32341bf84BFc5382aF534df5C7461a",
		contracts.SafeL2:                       "0x29fcB43b46531BcA003ddC8FCB67FFE91900C762",
		contracts.SafeProxyFactory:             "0x4e1DCf7AD4e460CfD30791CCC4F9c8a4f820ec67",
		contracts.MultiSend:                    "0x38869bf66a61cF6bDB996A6aE40D5853Fd43B526",
		contracts.MultiSendCallOnly:            "0x9641d764fc13c8B624c04430C7356C1C7C8102e2",
		contracts.CompatibilityFallbackHandler: "0xfd0732Dc9E303f09fCEf3a7388Ad10A83459Ec99",
		contracts.SignMessageLib:               "0xd53cd0aB83D845Ac265BE939c57F53AD838012c9",
		contracts.CreateCall:                   "0x9b35Af71d77eaf8d7e40252370304687390A1A52",
		contracts.SimulateTxAccessor:           "0x3d4BA2E0884aa488718476ca2FB8Efc291A46199",
	},
}

// zkSyncV130 holds the 1.3.0 deployments on zkSync Era, which does not support the singleton
// factory and therefore uses different addresses.
var zkSyncV130 = map[contracts.ContractType]string{
	contracts.Safe:                         "0xB00ce5CCcdEf57e539ddcEd01DF43a13855d9910",
	contracts.SafeL2:                       "0x1727c2c531cf966f902E5927b98490fDFb3b2b70",
	contracts.SafeProxyFactory:             "0xDAec33641865E4651fB43181C6DB6f7232Ee91c2",
	contracts.MultiSend:                    "0x0dFcccB95225ffB03c6FBB2559B530C2B7C8A912",
	contracts.MultiSendCallOnly:            "0xf220D3b4DFb23C4ade8C88E526C1353AbAcbC38F",
	contracts.CompatibilityFallbackHandler: "0x2f870a80647BbC554F3a0EBD093f11B4d2a7492A",
	contracts.SignMessageLib:               "0x357147caf9C0cCa67DfA0CF5369318d8193c8407",
	contracts.CreateCall:                   "0xcB8e5E438c5c2b45FbE17B02Ca9aF91509a8ad56",
	contracts.SimulateTxAccessor:           "0x4191E2e12E8BC5002424CE0c51f9947b02675a44",
}

// zkSyncChainIDs are zkSync Era mainnet and sepolia.
var zkSyncChainIDs = []uint64{324, 300}

// DefaultBook returns a new book holding the canonical Safe deployments and the zkSync Era
// deployments. zkSync Era chains do not see the canonical defaults.
func DefaultBook() *Book {
	b := NewBook()
	for version, byType := range canonical {
		for ct, addr := range byType {
			mustSave(b.SaveDefault(contracts.MustTypeAndVersion(ct, version), addr))
		}
	}

	for _, chainID := range zkSyncChainIDs {
		details, err := chainsel.GetChainDetailsByChainIDAndFamily(fmt.Sprint(chainID), chainsel.FamilyEVM)
		if err != nil {
			panic(err)
		}
		mustSave(b.ExcludeDefaults(details.ChainSelector))
		for ct, addr := range zkSyncV130 {
			mustSave(b.Save(details.ChainSelector, contracts.MustTypeAndVersion(ct, "1.3.0"), addr))
		}
	}

	return b
}

func mustSave(err error) {
	if err != nil {
		panic(err)
	}
}
