// Package devnet 以 GraphQL 形式对外暴露进程内账本
//
// 只实现客户端用到的最小子集：account 查询与 sendZkapp 变更。
package devnet

const schemaString = `
schema {
  query: Query
  mutation: Mutation
}

scalar PublicKey

type Query {
  account(publicKey: PublicKey!): Account
}

type Mutation {
  sendZkapp(input: SendZkappInput!): SendZkappPayload!
}

input SendZkappInput {
  zkappCommand: String!
}

type SendZkappPayload {
  zkapp: ZkappCommandResult!
}

type ZkappCommandResult {
  hash: String!
}

type Account {
  publicKey: PublicKey!
  nonce: String!
  balance: AnnotatedBalance!
  zkappState: [String!]
  verificationKey: AccountVerificationKey
}

type AnnotatedBalance {
  total: String!
}

type AccountVerificationKey {
  verificationKey: String!
}
`
